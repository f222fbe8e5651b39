// Package cleanup provides data retention and cleanup services.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/canaryscope/canaryscope/pkg/config"
	"github.com/canaryscope/canaryscope/pkg/store"
)

// Service periodically enforces retention policy: soft-deletes terminal
// (complete/error/skipped) Hearings past HearingTTL (§4.A.3). Idempotent
// and safe to run from multiple processes.
type Service struct {
	config   *config.RetentionConfig
	hearings *store.HearingStore

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service.
func NewService(cfg *config.RetentionConfig, hearings *store.HearingStore) *Service {
	return &Service{config: cfg, hearings: hearings}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started",
		"hearing_ttl", s.config.HearingTTL,
		"interval", s.config.CleanupInterval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(ctx context.Context) {
	cutoff := time.Now().Add(-s.config.HearingTTL)
	count, err := s.hearings.SoftDeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("Retention: soft-delete hearings failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("Retention: soft-deleted old hearings", "count", count)
	}
}
