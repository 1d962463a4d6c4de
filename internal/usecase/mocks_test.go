package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type mockMatchRepo struct {
	mock.Mock
}

func (that *mockMatchRepo) CreateOrUpdate(ctx context.Context, match *entity.Match) error {
	args := that.Called(ctx, match)
	return args.Error(0)
}

func (that *mockMatchRepo) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	args := that.Called(ctx, id)
	match, _ := args.Get(0).(*entity.Match)
	return match, args.Error(1)
}

func (that *mockMatchRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockArchive struct {
	mock.Mock
}

func (that *mockArchive) Save(ctx context.Context, record *entity.RoundRecord) error {
	args := that.Called(ctx, record)
	return args.Error(0)
}

func (that *mockArchive) Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	args := that.Called(ctx, limit)
	entries, _ := args.Get(0).([]entity.LeaderboardEntry)
	return entries, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (that *mockPublisher) PublishRoundFinished(ctx context.Context, record entity.RoundRecord) error {
	args := that.Called(ctx, record)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (that *mockRecorder) MoveAccepted() {
	that.Called()
}

func (that *mockRecorder) MoveRejected(reason string) {
	that.Called(reason)
}

func (that *mockRecorder) RoundFinished(outcome string) {
	that.Called(outcome)
}

func (that *mockRecorder) MatchCreated() {
	that.Called()
}
