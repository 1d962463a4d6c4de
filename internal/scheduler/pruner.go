package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const pruneTimeout = time.Minute

type roundPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner removes archived rounds older than the retention window on a cron schedule.
type Pruner struct {
	logger    *slog.Logger
	rounds    roundPruner
	retention time.Duration
	now       func() time.Time

	cron *cron.Cron
}

func NewPruner(logger *slog.Logger, rounds roundPruner, retention time.Duration) *Pruner {
	return &Pruner{
		logger:    logger,
		rounds:    rounds,
		retention: retention,
		now:       time.Now,

		cron: cron.New(),
	}
}

// Start schedules the prune job. schedule accepts standard cron specs and
// descriptors such as "@daily".
func (that *Pruner) Start(schedule string) error {
	if _, err := that.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
		defer cancel()

		_, _ = that.Prune(ctx)
	}); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	that.cron.Start()

	return nil
}

// Stop waits for a running prune to finish.
func (that *Pruner) Stop() {
	<-that.cron.Stop().Done()
}

func (that *Pruner) Prune(ctx context.Context) (int64, error) {
	log := that.logger.With("method", "Prune")

	cutoff := that.now().Add(-that.retention)

	pruned, err := that.rounds.PruneBefore(ctx, cutoff)
	if err != nil {
		log.Error("failed to prune rounds", "error", err)
		return 0, fmt.Errorf("failed prune rounds: %w", err)
	}

	log.Info("pruned archived rounds", "count", pruned, "cutoff", cutoff)

	return pruned, nil
}
