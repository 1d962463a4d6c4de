package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

const outcomeDraw = "draw"

type matchRepo interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	DeleteByID(ctx context.Context, id string) error
}

type roundArchive interface {
	Save(ctx context.Context, record *entity.RoundRecord) error
	Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error)
}

type roundPublisher interface {
	PublishRoundFinished(ctx context.Context, record entity.RoundRecord) error
}

type recorder interface {
	MoveAccepted()
	MoveRejected(reason string)
	RoundFinished(outcome string)
	MatchCreated()
}

// MatchManager loads a match, applies one transition and stores the result.
// A nil archive disables the leaderboard; a nil publisher drops round events.
type MatchManager struct {
	logger *slog.Logger

	matchRepo matchRepo
	archive   roundArchive
	publisher roundPublisher
	recorder  recorder

	now   func() time.Time
	coin  func() bool
	newID func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMatchManager(
	logger *slog.Logger,
	matchRepo matchRepo,
	archive roundArchive,
	publisher roundPublisher,
	recorder recorder,
) *MatchManager {
	return &MatchManager{
		logger: logger,

		matchRepo: matchRepo,
		archive:   archive,
		publisher: publisher,
		recorder:  recorder,

		now:   time.Now,
		coin:  entity.FlipCoin,
		newID: uuid.NewString,

		locks: make(map[string]*sync.Mutex),
	}
}

func (that *MatchManager) CreateMatch(ctx context.Context, playerOne, playerTwo string) (*entity.Match, error) {
	match := entity.NewMatch(that.newID(), playerOne, playerTwo)
	match.UpdatedAt = that.now()

	if err := that.matchRepo.CreateOrUpdate(ctx, &match); err != nil {
		return nil, fmt.Errorf("failed create match: %w", err)
	}

	if that.recorder != nil {
		that.recorder.MatchCreated()
	}

	that.logger.Info("match created", "match_id", match.ID)

	return &match, nil
}

func (that *MatchManager) GetMatch(ctx context.Context, id string) (*entity.Match, error) {
	match, err := that.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed get match by id: %w", err)
	}

	return match, nil
}

func (that *MatchManager) DeleteMatch(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer unlock()

	if err := that.matchRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed delete match by id: %w", err)
	}

	that.mu.Lock()
	delete(that.locks, id)
	that.mu.Unlock()

	return nil
}

// Play places the next mark on cell. A rejected move returns the stored
// match together with the reason.
func (that *MatchManager) Play(ctx context.Context, id string, cell int) (*entity.Match, error) {
	return that.update(ctx, id, func(match entity.Match) (entity.Match, error) {
		next, err := match.Play(cell)
		if that.recorder == nil {
			return next, err
		}

		if err != nil {
			that.recorder.MoveRejected(rejectReason(err))
		} else {
			that.recorder.MoveAccepted()
		}

		return next, err
	})
}

func (that *MatchManager) JumpTo(ctx context.Context, id string, move int) (*entity.Match, error) {
	return that.update(ctx, id, func(match entity.Match) (entity.Match, error) {
		return match.JumpTo(move)
	})
}

func (that *MatchManager) NewRound(ctx context.Context, id string) (*entity.Match, error) {
	return that.update(ctx, id, func(match entity.Match) (entity.Match, error) {
		return match.NewRound(), nil
	})
}

func (that *MatchManager) ResetScores(ctx context.Context, id string) (*entity.Match, error) {
	return that.update(ctx, id, func(match entity.Match) (entity.Match, error) {
		return match.ResetScores(), nil
	})
}

func (that *MatchManager) CoinFlip(ctx context.Context, id string) (*entity.Match, error) {
	return that.update(ctx, id, func(match entity.Match) (entity.Match, error) {
		return match.CoinFlip(that.coin()), nil
	})
}

func (that *MatchManager) SwapRoles(ctx context.Context, id string) (*entity.Match, error) {
	return that.update(ctx, id, func(match entity.Match) (entity.Match, error) {
		return match.SwapRoles(), nil
	})
}

func (that *MatchManager) RenamePlayers(ctx context.Context, id, playerOne, playerTwo string) (*entity.Match, error) {
	return that.update(ctx, id, func(match entity.Match) (entity.Match, error) {
		return match.Rename(playerOne, playerTwo), nil
	})
}

// Leaderboard returns up to limit players ranked by archived wins.
func (that *MatchManager) Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	if that.archive == nil {
		return nil, apperror.ErrArchiveDisabled
	}

	switch {
	case limit <= 0:
		limit = DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		limit = MaxLeaderboardLimit
	}

	entries, err := that.archive.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed get leaderboard: %w", err)
	}

	return entries, nil
}

func (that *MatchManager) update(
	ctx context.Context,
	id string,
	transition func(entity.Match) (entity.Match, error),
) (*entity.Match, error) {
	unlock := that.lock(id)
	defer unlock()

	current, err := that.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed get match by id: %w", err)
	}

	next, err := transition(*current)
	if err != nil {
		return current, err
	}

	next.UpdatedAt = that.now()
	if err = that.matchRepo.CreateOrUpdate(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed update match: %w", err)
	}

	if !current.RoundOver && next.RoundOver {
		that.finishRound(ctx, next)
	}

	return &next, nil
}

// finishRound archives and announces a round that just ended. Failures here
// are logged only; the move itself is already stored.
func (that *MatchManager) finishRound(ctx context.Context, match entity.Match) {
	log := that.logger.With("method", "finishRound", "match_id", match.ID, "round", match.Round)

	record := entity.NewRoundRecord(that.newID(), match, match.UpdatedAt)

	if that.archive != nil {
		if err := that.archive.Save(ctx, &record); err != nil {
			log.Error("failed to archive round", "error", err)
		}
	}

	if that.publisher != nil {
		if err := that.publisher.PublishRoundFinished(ctx, record); err != nil {
			log.Error("failed to publish round", "error", err)
		}
	}

	outcome := record.WinnerMark
	if record.IsDraw() {
		outcome = outcomeDraw
	}

	if that.recorder != nil {
		that.recorder.RoundFinished(outcome)
	}

	log.Info("round finished", "outcome", outcome)
}

func (that *MatchManager) lock(id string) func() {
	that.mu.Lock()
	matchLock, ok := that.locks[id]
	if !ok {
		matchLock = &sync.Mutex{}
		that.locks[id] = matchLock
	}
	that.mu.Unlock()

	matchLock.Lock()

	return matchLock.Unlock
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoundOver):
		return "round_over"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, apperror.ErrInvalidCell):
		return "invalid_cell"
	default:
		return "unknown"
	}
}
