package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDatabaseDown = errors.New("database down")

type stubPruner struct {
	cutoff time.Time
	pruned int64
	err    error
}

func (that *stubPruner) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	that.cutoff = cutoff
	return that.pruned, that.err
}

func newTestPruner(rounds roundPruner) *Pruner {
	pruner := NewPruner(slog.New(slog.NewTextHandler(io.Discard, nil)), rounds, 24*time.Hour)
	pruner.now = func() time.Time { return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC) }

	return pruner
}

func TestPruner_Prune(t *testing.T) {
	t.Run("Deletes rounds past the retention window", func(t *testing.T) {
		// Given: an archive with three old rounds
		rounds := &stubPruner{pruned: 3}
		pruner := newTestPruner(rounds)

		// When: the prune job runs
		pruned, err := pruner.Prune(context.Background())

		// Then: the cutoff is one retention window ago
		require.NoError(t, err)
		assert.Equal(t, int64(3), pruned)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rounds.cutoff)
	})

	t.Run("Returns archive errors", func(t *testing.T) {
		// Given: an archive that is down
		pruner := newTestPruner(&stubPruner{err: errDatabaseDown})

		// When: the prune job runs
		_, err := pruner.Prune(context.Background())

		// Then: the error is returned
		require.ErrorIs(t, err, errDatabaseDown)
	})
}

func TestPruner_Start(t *testing.T) {
	t.Run("Rejects an invalid schedule", func(t *testing.T) {
		// Given: a pruner
		pruner := newTestPruner(&stubPruner{})

		// When: it is started with a malformed spec
		err := pruner.Start("every now and then")

		// Then: the schedule is refused
		require.Error(t, err)
	})

	t.Run("Starts and stops with a descriptor", func(t *testing.T) {
		// Given: a pruner
		pruner := newTestPruner(&stubPruner{})

		// When: it is started daily and stopped
		err := pruner.Start("@daily")

		// Then: it starts and stops cleanly
		require.NoError(t, err)
		pruner.Stop()
	})
}
