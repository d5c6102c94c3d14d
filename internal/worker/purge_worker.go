package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// PurgeWorker enforces the closure policy in the background: accounts whose
// closure window lapsed longer than the grace period ago are permanently
// removed. Logging in is supposed to dismiss the closure, but the login flow
// does not clear the window field today; see DESIGN.md.
type PurgeWorker struct {
	users    repository.UserRepository
	interval time.Duration
	grace    time.Duration
	logger   *zap.Logger
}

// NewPurgeWorker constructs the worker.
func NewPurgeWorker(users repository.UserRepository, cfg config.PurgeConfig, logger *zap.Logger) *PurgeWorker {
	return &PurgeWorker{
		users:    users,
		interval: cfg.Interval,
		grace:    cfg.Grace,
		logger:   logger,
	}
}

// Run loops until the context is cancelled, purging once per interval.
func (w *PurgeWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.purgeOnce(ctx)
		}
	}
}

func (w *PurgeWorker) purgeOnce(ctx context.Context) {
	cutoff := time.Now().Add(-w.grace)
	deleted, err := w.users.PurgeClosedAccounts(ctx, cutoff)
	if err != nil {
		w.logger.Error("closure purge failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.logger.Info("closure purge completed", zap.Int64("deleted", deleted))
	}
}
