package websocket

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

func (that *Server) handleNewMatch(ctx context.Context, _ string, payload *RequestPayload) (*entity.Match, error) {
	return that.matches.CreateMatch(ctx, payload.PlayerOne, payload.PlayerTwo)
}

func (that *Server) handleJoinMatch(ctx context.Context, matchID string, _ *RequestPayload) (*entity.Match, error) {
	if matchID == "" {
		return nil, errNoMatch
	}

	return that.matches.GetMatch(ctx, matchID)
}

func (that *Server) handleTurn(ctx context.Context, matchID string, payload *RequestPayload) (*entity.Match, error) {
	if matchID == "" {
		return nil, errNoMatch
	}

	if payload.Cell == nil {
		return nil, errBadPayload
	}

	return that.matches.Play(ctx, matchID, *payload.Cell)
}

func (that *Server) handleJump(ctx context.Context, matchID string, payload *RequestPayload) (*entity.Match, error) {
	if matchID == "" {
		return nil, errNoMatch
	}

	if payload.Move == nil {
		return nil, errBadPayload
	}

	return that.matches.JumpTo(ctx, matchID, *payload.Move)
}

func (that *Server) handleNewRound(ctx context.Context, matchID string, _ *RequestPayload) (*entity.Match, error) {
	if matchID == "" {
		return nil, errNoMatch
	}

	return that.matches.NewRound(ctx, matchID)
}

func (that *Server) handleResetScores(ctx context.Context, matchID string, _ *RequestPayload) (*entity.Match, error) {
	if matchID == "" {
		return nil, errNoMatch
	}

	return that.matches.ResetScores(ctx, matchID)
}

func (that *Server) handleCoinFlip(ctx context.Context, matchID string, _ *RequestPayload) (*entity.Match, error) {
	if matchID == "" {
		return nil, errNoMatch
	}

	return that.matches.CoinFlip(ctx, matchID)
}

func (that *Server) handleSwapRoles(ctx context.Context, matchID string, _ *RequestPayload) (*entity.Match, error) {
	if matchID == "" {
		return nil, errNoMatch
	}

	return that.matches.SwapRoles(ctx, matchID)
}

func (that *Server) handleRenamePlayers(ctx context.Context, matchID string, payload *RequestPayload) (*entity.Match, error) {
	if matchID == "" {
		return nil, errNoMatch
	}

	return that.matches.RenamePlayers(ctx, matchID, payload.PlayerOne, payload.PlayerTwo)
}
