package health

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "db", Healthy: true}
	sqlDB, err := c.db.DB()
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if err := c.client.Ping(ctx).Err(); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

// UpstreamChecker verifies the business API is reachable. Any HTTP response
// counts as reachable; a 5xx there is the upstream's problem to report, not
// a reason to pull this gateway from rotation.
type UpstreamChecker struct {
	baseURL    string
	httpClient *http.Client
}

func NewUpstreamChecker(baseURL string) Checker {
	if baseURL == "" {
		return nil
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil
	}
	return &UpstreamChecker{baseURL: baseURL, httpClient: &http.Client{}}
}

func (c *UpstreamChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "upstream", Healthy: true}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		res.Healthy = false
		res.Error = fmt.Sprintf("upstream unreachable: %v", err)
		return res
	}
	resp.Body.Close()
	return res
}
