package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/observability"
	"github.com/registrack/backoffice-gateway/internal/repository"
)

const auditFlushInterval = 2 * time.Second

// AuditService persists access decisions off the request path. Decisions are
// buffered on a channel and flushed in batches; when the buffer is full the
// decision is dropped and counted, never blocking a handler.
type AuditService struct {
	repo   repository.AuditRepository
	logger *slog.Logger

	buffer  chan domain.AccessDecision
	done    chan struct{}
	once    sync.Once
	stopped sync.WaitGroup
}

func NewAuditService(repo repository.AuditRepository, logger *slog.Logger, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	s := &AuditService{
		repo:   repo,
		logger: logger,
		buffer: make(chan domain.AccessDecision, bufferSize),
		done:   make(chan struct{}),
	}
	s.stopped.Add(1)
	go s.run()
	return s
}

// RecordDecision enqueues one decision. Missing id and timestamp are filled
// here so callers only describe what happened.
func (s *AuditService) RecordDecision(decision domain.AccessDecision) {
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}
	if decision.CreatedAt.IsZero() {
		decision.CreatedAt = time.Now().UTC()
	}
	select {
	case s.buffer <- decision:
	default:
		observability.RecordAuditWrite(context.Background(), "dropped")
		s.logger.Warn("audit buffer full, decision dropped",
			"subject", decision.Subject, "module", decision.Module, "action", decision.Action)
	}
}

func (s *AuditService) List(filter repository.AuditFilter, page repository.PageRequest) (repository.PageResult[domain.AccessDecision], error) {
	return s.repo.List(filter, page)
}

// Close drains the buffer and stops the writer. Safe to call more than once.
func (s *AuditService) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.done) })
	finished := make(chan struct{})
	go func() {
		s.stopped.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AuditService) run() {
	defer s.stopped.Done()
	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	var pending []domain.AccessDecision
	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := s.repo.CreateBatch(pending); err != nil {
			observability.RecordAuditWrite(context.Background(), "error")
			s.logger.Error("flush audit decisions", "error", err, "count", len(pending))
		} else {
			observability.RecordAuditWrite(context.Background(), "ok")
		}
		pending = pending[:0]
	}

	for {
		select {
		case decision := <-s.buffer:
			pending = append(pending, decision)
			if len(pending) >= cap(s.buffer)/2 {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case decision := <-s.buffer:
					pending = append(pending, decision)
				default:
					flush()
					return
				}
			}
		}
	}
}
