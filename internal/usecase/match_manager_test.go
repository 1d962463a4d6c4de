package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/testing/suite"
)

var (
	errRedisDown    = errors.New("redis down")
	errPostgresDown = errors.New("postgres down")
	errKafkaDown    = errors.New("kafka down")
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testDeps struct {
	repo      *mockMatchRepo
	archive   *mockArchive
	publisher *mockPublisher
	recorder  *mockRecorder
}

func newTestManager(t *testing.T) (*MatchManager, testDeps) {
	t.Helper()

	deps := testDeps{
		repo:      &mockMatchRepo{},
		archive:   &mockArchive{},
		publisher: &mockPublisher{},
		recorder:  &mockRecorder{},
	}

	t.Cleanup(func() {
		deps.repo.AssertExpectations(t)
		deps.archive.AssertExpectations(t)
		deps.publisher.AssertExpectations(t)
		deps.recorder.AssertExpectations(t)
	})

	manager := NewMatchManager(discardLogger(), deps.repo, deps.archive, deps.publisher, deps.recorder)
	withFixedClock(manager)

	return manager, deps
}

func withFixedClock(manager *MatchManager) {
	ids := 0
	manager.now = func() time.Time { return fixedNow }
	manager.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func played(t *testing.T, match entity.Match, cells ...int) *entity.Match {
	t.Helper()

	for _, cell := range cells {
		var err error
		match, err = match.Play(cell)
		require.NoError(t, err)
	}

	return &match
}

func TestMatchManager_CreateMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a new match", func(t *testing.T) {
		// Given: a repository that accepts the match
		manager, deps := newTestManager(t)
		playerOne, playerTwo := gofakeit.FirstName(), gofakeit.LastName()

		deps.repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Match")).Return(nil).Once()
		deps.recorder.On("MatchCreated").Once()

		// When: CreateMatch is called
		match, err := manager.CreateMatch(ctx, playerOne, playerTwo)

		// Then: the match has a fresh id and player one plays X
		require.NoError(t, err)
		assert.Equal(t, "id-1", match.ID)
		assert.Equal(t, entity.Roles{X: playerOne, O: playerTwo}, match.Roles)
		assert.Equal(t, fixedNow, match.UpdatedAt)
	})

	t.Run("Returns error if repository fails", func(t *testing.T) {
		// Given: a repository that cannot save
		manager, deps := newTestManager(t)

		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(errRedisDown).Once()

		// When: CreateMatch is called
		match, err := manager.CreateMatch(ctx, "", "")

		// Then: the storage error is returned and nothing is counted
		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, match)
	})
}

func TestMatchManager_GetMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Wraps not found", func(t *testing.T) {
		// Given: a repository without the match
		manager, deps := newTestManager(t)

		deps.repo.On("GetByID", mock.Anything, "missing").Return(nil, apperror.ErrMatchNotFound).Once()

		// When: GetMatch is called
		_, err := manager.GetMatch(ctx, "missing")

		// Then: the sentinel is still recognisable
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})
}

func TestMatchManager_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores an accepted move", func(t *testing.T) {
		// Given: a new match
		manager, deps := newTestManager(t)
		stored := entity.NewMatch("m1", "Ana", "Bob")

		deps.repo.On("GetByID", mock.Anything, "m1").Return(&stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.MatchedBy(func(match *entity.Match) bool {
			return match.CurrentBoard()[4] == entity.MarkX
		})).Return(nil).Once()
		deps.recorder.On("MoveAccepted").Once()

		// When: X plays the center
		match, err := manager.Play(ctx, "m1", 4)

		// Then: the new board is returned and O is next
		require.NoError(t, err)
		assert.Equal(t, entity.MarkO, match.NextMark())
		assert.Equal(t, fixedNow, match.UpdatedAt)
	})

	t.Run("Rejects an occupied cell without saving", func(t *testing.T) {
		// Given: a match where the center is taken
		manager, deps := newTestManager(t)
		stored := played(t, entity.NewMatch("m1", "Ana", "Bob"), 4)

		deps.repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()
		deps.recorder.On("MoveRejected", "cell_occupied").Once()

		// When: the center is clicked again
		match, err := manager.Play(ctx, "m1", 4)

		// Then: the unchanged match comes back with the reason
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, stored.History, match.History)
		deps.repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Archives and publishes a finished round", func(t *testing.T) {
		// Given: X is one move away from the top row
		manager, deps := newTestManager(t)
		stored := played(t, entity.NewMatch("m1", "Ana", "Bob"), 0, 3, 1, 4)

		deps.repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()
		deps.recorder.On("MoveAccepted").Once()
		deps.recorder.On("RoundFinished", entity.MarkX).Once()
		deps.archive.On("Save", mock.Anything, mock.MatchedBy(func(record *entity.RoundRecord) bool {
			return record.MatchID == "m1" &&
				record.WinnerName == "Ana" &&
				record.Moves == 5 &&
				record.FinishedAt.Equal(fixedNow)
		})).Return(nil).Once()
		deps.publisher.On("PublishRoundFinished", mock.Anything, mock.MatchedBy(func(record entity.RoundRecord) bool {
			return record.WinnerMark == entity.MarkX
		})).Return(nil).Once()

		// When: X completes the row
		match, err := manager.Play(ctx, "m1", 2)

		// Then: the round is scored once and reported
		require.NoError(t, err)
		assert.True(t, match.RoundOver)
		assert.Equal(t, entity.Scores{X: 1}, match.Scores)
	})

	t.Run("Archive and publish failures do not fail the move", func(t *testing.T) {
		// Given: a draw one move away and broken downstream systems
		manager, deps := newTestManager(t)
		stored := played(t, entity.NewMatch("m1", "Ana", "Bob"), 0, 4, 8, 1, 7, 6, 2, 5)

		deps.repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()
		deps.recorder.On("MoveAccepted").Once()
		deps.recorder.On("RoundFinished", "draw").Once()
		deps.archive.On("Save", mock.Anything, mock.Anything).Return(errPostgresDown).Once()
		deps.publisher.On("PublishRoundFinished", mock.Anything, mock.Anything).Return(errKafkaDown).Once()

		// When: the last cell is filled
		match, err := manager.Play(ctx, "m1", 3)

		// Then: the draw is stored and returned
		require.NoError(t, err)
		assert.True(t, match.IsDraw())
		assert.Equal(t, 1, match.Scores.Draws)
	})

	t.Run("Does not report a round twice", func(t *testing.T) {
		// Given: a round that is already over
		manager, deps := newTestManager(t)
		stored := played(t, entity.NewMatch("m1", "Ana", "Bob"), 0, 3, 1, 4, 2)

		deps.repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()
		deps.recorder.On("MoveRejected", "round_over").Once()

		// When: another cell is clicked
		_, err := manager.Play(ctx, "m1", 8)

		// Then: the move is rejected and nothing is archived
		require.ErrorIs(t, err, apperror.ErrRoundOver)
	})

	t.Run("Runs without archive, publisher or metrics", func(t *testing.T) {
		// Given: a manager with only a repository
		repo := &mockMatchRepo{}
		manager := NewMatchManager(discardLogger(), repo, nil, nil, nil)
		withFixedClock(manager)
		stored := played(t, entity.NewMatch("m1", "Ana", "Bob"), 0, 3, 1, 4)

		repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()

		// When: the round is won
		match, err := manager.Play(ctx, "m1", 2)

		// Then: the move still goes through
		require.NoError(t, err)
		assert.Equal(t, 1, match.Scores.X)
		repo.AssertExpectations(t)
	})

	t.Run("Returns error if saving fails", func(t *testing.T) {
		// Given: a repository that loads but cannot save
		manager, deps := newTestManager(t)
		stored := entity.NewMatch("m1", "Ana", "Bob")

		deps.repo.On("GetByID", mock.Anything, "m1").Return(&stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(errRedisDown).Once()
		deps.recorder.On("MoveAccepted").Once()

		// When: a move is played
		match, err := manager.Play(ctx, "m1", 0)

		// Then: the storage error is returned
		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, match)
	})
}

func TestMatchManager_JumpTo(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves the cursor", func(t *testing.T) {
		// Given: a match with three moves
		manager, deps := newTestManager(t)
		stored := played(t, entity.NewMatch("m1", "Ana", "Bob"), 0, 1, 2)

		deps.repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()

		// When: the first move is displayed
		match, err := manager.JumpTo(ctx, "m1", 1)

		// Then: history is kept and O is next
		require.NoError(t, err)
		assert.Equal(t, 1, match.CurrentMove)
		assert.Len(t, match.History, 4)
		assert.Equal(t, entity.MarkO, match.NextMark())
	})

	t.Run("Rejects a move outside history", func(t *testing.T) {
		// Given: a new match
		manager, deps := newTestManager(t)
		stored := entity.NewMatch("m1", "Ana", "Bob")

		deps.repo.On("GetByID", mock.Anything, "m1").Return(&stored, nil).Once()

		// When: a future move is requested
		_, err := manager.JumpTo(ctx, "m1", 5)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})
}

func TestMatchManager_RoundLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("NewRound flips the opening mark", func(t *testing.T) {
		// Given: a finished round
		manager, deps := newTestManager(t)
		stored := played(t, entity.NewMatch("m1", "Ana", "Bob"), 0, 3, 1, 4, 2)

		deps.repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()

		// When: a new round starts
		match, err := manager.NewRound(ctx, "m1")

		// Then: the board is empty, O opens and the score stays
		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, match.CurrentBoard())
		assert.Equal(t, entity.MarkO, match.NextMark())
		assert.Equal(t, 1, match.Scores.X)
		assert.False(t, match.RoundOver)
	})

	t.Run("ResetScores keeps the board", func(t *testing.T) {
		// Given: a scored match mid-round
		manager, deps := newTestManager(t)
		stored := played(t, entity.NewMatch("m1", "Ana", "Bob"), 0)
		stored.Scores = entity.Scores{X: 2, O: 1, Draws: 3}

		deps.repo.On("GetByID", mock.Anything, "m1").Return(stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()

		// When: scores are reset
		match, err := manager.ResetScores(ctx, "m1")

		// Then: every bucket is zero and the board is untouched
		require.NoError(t, err)
		assert.Equal(t, entity.Scores{}, match.Scores)
		assert.Equal(t, stored.CurrentBoard(), match.CurrentBoard())
	})

	t.Run("CoinFlip on tails gives player two X", func(t *testing.T) {
		// Given: a coin that lands on tails
		manager, deps := newTestManager(t)
		manager.coin = func() bool { return false }
		stored := entity.NewMatch("m1", "Ana", "Bob")

		deps.repo.On("GetByID", mock.Anything, "m1").Return(&stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()

		// When: the coin is flipped
		match, err := manager.CoinFlip(ctx, "m1")

		// Then: Bob plays X and opens
		require.NoError(t, err)
		assert.Equal(t, entity.Roles{X: "Bob", O: "Ana"}, match.Roles)
		assert.Equal(t, entity.MarkX, match.NextMark())
		assert.Equal(t, "Coinflip: Bob is X, Ana is O.", match.Note)
	})

	t.Run("SwapRoles exchanges the players", func(t *testing.T) {
		// Given: Ana plays X
		manager, deps := newTestManager(t)
		stored := entity.NewMatch("m1", "Ana", "Bob")

		deps.repo.On("GetByID", mock.Anything, "m1").Return(&stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()

		// When: roles are swapped
		match, err := manager.SwapRoles(ctx, "m1")

		// Then: Bob plays X
		require.NoError(t, err)
		assert.Equal(t, entity.Roles{X: "Bob", O: "Ana"}, match.Roles)
		assert.Equal(t, "Swapped: Bob is now X.", match.Note)
	})

	t.Run("RenamePlayers keeps the roles", func(t *testing.T) {
		// Given: a new match
		manager, deps := newTestManager(t)
		stored := entity.NewMatch("m1", "Ana", "Bob")

		deps.repo.On("GetByID", mock.Anything, "m1").Return(&stored, nil).Once()
		deps.repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(nil).Once()

		// When: the players are renamed
		match, err := manager.RenamePlayers(ctx, "m1", "Cid", "Dee")

		// Then: the names change but roles wait for a coin flip
		require.NoError(t, err)
		assert.Equal(t, "Cid", match.PlayerOne)
		assert.Equal(t, "Dee", match.PlayerTwo)
		assert.Equal(t, entity.Roles{X: "Ana", O: "Bob"}, match.Roles)
	})
}

func TestMatchManager_DeleteMatch(t *testing.T) {
	ctx := context.Background()

	// Given: a stored match that has been locked once
	manager, deps := newTestManager(t)
	manager.lock("m1")()

	deps.repo.On("DeleteByID", mock.Anything, "m1").Return(nil).Once()

	// When: the match is deleted
	err := manager.DeleteMatch(ctx, "m1")

	// Then: its lock is released as well
	require.NoError(t, err)
	assert.NotContains(t, manager.locks, "m1")
}

func TestMatchManager_Leaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Clamps the limit", func(t *testing.T) {
		// Given: an archive
		manager, deps := newTestManager(t)
		entries := []entity.LeaderboardEntry{{Name: "Ana", Wins: 3, Rounds: 4}}

		deps.archive.On("Leaderboard", mock.Anything, DefaultLeaderboardLimit).Return(entries, nil).Once()
		deps.archive.On("Leaderboard", mock.Anything, MaxLeaderboardLimit).Return(entries, nil).Once()

		// When: the leaderboard is requested with no limit and a huge limit
		fromDefault, err := manager.Leaderboard(ctx, 0)
		require.NoError(t, err)
		fromHuge, err := manager.Leaderboard(ctx, 5000)
		require.NoError(t, err)

		// Then: both calls return the archive entries
		assert.Equal(t, entries, fromDefault)
		assert.Equal(t, entries, fromHuge)
	})

	t.Run("Fails without an archive", func(t *testing.T) {
		// Given: a manager without archive
		manager := NewMatchManager(discardLogger(), &mockMatchRepo{}, nil, nil, nil)

		// When: the leaderboard is requested
		_, err := manager.Leaderboard(ctx, 10)

		// Then: the archive is reported disabled
		require.ErrorIs(t, err, apperror.ErrArchiveDisabled)
	})
}

func TestMatchManager_ConcurrentPlays(t *testing.T) {
	ctx := context.Background()

	// Given: a match stored in memory
	manager := NewMatchManager(discardLogger(), suite.NewMemoryMatches(), nil, nil, nil)

	created, err := manager.CreateMatch(ctx, "Ana", "Bob")
	require.NoError(t, err)

	// When: every cell is clicked at the same time
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)

	for cell := range entity.BoardSize {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, playErr := manager.Play(ctx, created.ID, cell); playErr == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Then: no accepted move was lost
	match, err := manager.GetMatch(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, accepted, len(match.History)-1)
	assert.Equal(t, accepted, match.CurrentBoard().Filled())
}
