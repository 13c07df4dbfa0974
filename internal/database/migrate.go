package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/registrack/backoffice-gateway/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.AccessDecision{})
}

// PurgeExpiredDecisions removes audit rows older than the retention window
// and reports how many were deleted.
func PurgeExpiredDecisions(db *gorm.DB, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)
	result := db.Where("created_at < ?", cutoff).Delete(&domain.AccessDecision{})
	return result.RowsAffected, result.Error
}
