package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/domain"
)

type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
}

// Counter is the increment-only slice of a metrics counter.
type Counter interface {
	Inc()
}

// ActivityService persists lifecycle events asynchronously so request handling
// never waits on the activity table.
type ActivityService struct {
	repo    ActivityRepository
	log     *zap.Logger
	entries chan *domain.ActivityLog
	done    chan struct{}
	dropped Counter
}

const activityBufferSize = 10_000

func NewActivityService(repo ActivityRepository, log *zap.Logger) *ActivityService {
	svc := &ActivityService{
		repo:    repo,
		log:     log,
		entries: make(chan *domain.ActivityLog, activityBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// SetDropCounter registers a counter bumped whenever a full buffer forces a drop.
func (s *ActivityService) SetDropCounter(c Counter) {
	s.dropped = c
}

// Record enqueues an event for async persistence. If the buffer is full, the
// entry is dropped and a warning is emitted.
func (s *ActivityService) Record(action domain.ActivityAction, resourceType, resourceID, detail string) {
	entry := &domain.ActivityLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       detail,
	}

	select {
	case s.entries <- entry:
	default:
		if s.dropped != nil {
			s.dropped.Inc()
		}
		s.log.Warn("activity log buffer full, dropping entry",
			zap.String("action", string(action)),
			zap.String("resource", resourceType),
		)
	}
}

func (s *ActivityService) Shutdown() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("activity service shutdown timed out; some entries may be lost")
	}
}

func (s *ActivityService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist activity entry", zap.Error(err))
		}
		cancel()
	}
}
