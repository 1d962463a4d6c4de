package suite

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// MemoryMatches is a goroutine-safe in-memory match repository for tests
// that do not need a Redis container.
type MemoryMatches struct {
	mu      sync.Mutex
	matches map[string]entity.Match
}

func NewMemoryMatches() *MemoryMatches {
	return &MemoryMatches{
		matches: make(map[string]entity.Match),
	}
}

func (that *MemoryMatches) CreateOrUpdate(_ context.Context, match *entity.Match) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.matches[match.ID] = *match

	return nil
}

func (that *MemoryMatches) GetByID(_ context.Context, id string) (*entity.Match, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	match, ok := that.matches[id]
	if !ok {
		return nil, apperror.ErrMatchNotFound
	}

	return &match, nil
}

func (that *MemoryMatches) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.matches[id]; !ok {
		return apperror.ErrMatchNotFound
	}

	delete(that.matches, id)

	return nil
}
