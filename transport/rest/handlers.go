package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/view"
)

var errBadRequest = errors.New("bad request")

type matchService interface {
	CreateMatch(ctx context.Context, playerOne, playerTwo string) (*entity.Match, error)
	GetMatch(ctx context.Context, id string) (*entity.Match, error)
	DeleteMatch(ctx context.Context, id string) error

	Play(ctx context.Context, id string, cell int) (*entity.Match, error)
	JumpTo(ctx context.Context, id string, move int) (*entity.Match, error)
	NewRound(ctx context.Context, id string) (*entity.Match, error)
	ResetScores(ctx context.Context, id string) (*entity.Match, error)
	CoinFlip(ctx context.Context, id string) (*entity.Match, error)
	SwapRoles(ctx context.Context, id string) (*entity.Match, error)
	RenamePlayers(ctx context.Context, id, playerOne, playerTwo string) (*entity.Match, error)

	Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error)
}

type playersRequest struct {
	PlayerOne string `json:"player_one"`
	PlayerTwo string `json:"player_two"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Move *int `json:"move"`
}

type matchResponse struct {
	Match *view.Match `json:"match,omitempty"`
	Error string      `json:"error,omitempty"`
}

type leaderboardResponse struct {
	Entries []entity.LeaderboardEntry `json:"entries"`
}

type Handlers struct {
	logger  *slog.Logger
	matches matchService
}

func NewHandlers(logger *slog.Logger, matches matchService) *Handlers {
	return &Handlers{
		logger:  logger,
		matches: matches,
	}
}

func (that *Handlers) CreateMatch(w http.ResponseWriter, r *http.Request) {
	// names are optional, so an empty body is fine
	var request playersRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		that.writeError(w, errBadRequest, nil)
		return
	}

	match, err := that.matches.CreateMatch(r.Context(), request.PlayerOne, request.PlayerTwo)
	that.writeMatch(w, http.StatusCreated, match, err)
}

func (that *Handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := that.matches.GetMatch(r.Context(), chi.URLParam(r, "id"))
	that.writeMatch(w, http.StatusOK, match, err)
}

func (that *Handlers) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	if err := that.matches.DeleteMatch(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	var request moveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Cell == nil {
		that.writeError(w, errBadRequest, nil)
		return
	}

	match, err := that.matches.Play(r.Context(), chi.URLParam(r, "id"), *request.Cell)
	that.writeMatch(w, http.StatusOK, match, err)
}

func (that *Handlers) JumpTo(w http.ResponseWriter, r *http.Request) {
	var request jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Move == nil {
		that.writeError(w, errBadRequest, nil)
		return
	}

	match, err := that.matches.JumpTo(r.Context(), chi.URLParam(r, "id"), *request.Move)
	that.writeMatch(w, http.StatusOK, match, err)
}

func (that *Handlers) NewRound(w http.ResponseWriter, r *http.Request) {
	match, err := that.matches.NewRound(r.Context(), chi.URLParam(r, "id"))
	that.writeMatch(w, http.StatusOK, match, err)
}

func (that *Handlers) ResetScores(w http.ResponseWriter, r *http.Request) {
	match, err := that.matches.ResetScores(r.Context(), chi.URLParam(r, "id"))
	that.writeMatch(w, http.StatusOK, match, err)
}

func (that *Handlers) CoinFlip(w http.ResponseWriter, r *http.Request) {
	match, err := that.matches.CoinFlip(r.Context(), chi.URLParam(r, "id"))
	that.writeMatch(w, http.StatusOK, match, err)
}

func (that *Handlers) SwapRoles(w http.ResponseWriter, r *http.Request) {
	match, err := that.matches.SwapRoles(r.Context(), chi.URLParam(r, "id"))
	that.writeMatch(w, http.StatusOK, match, err)
}

func (that *Handlers) RenamePlayers(w http.ResponseWriter, r *http.Request) {
	var request playersRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeError(w, errBadRequest, nil)
		return
	}

	match, err := that.matches.RenamePlayers(r.Context(), chi.URLParam(r, "id"), request.PlayerOne, request.PlayerTwo)
	that.writeMatch(w, http.StatusOK, match, err)
}

func (that *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			that.writeError(w, errBadRequest, nil)
			return
		}
		limit = parsed
	}

	entries, err := that.matches.Leaderboard(r.Context(), limit)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	if entries == nil {
		entries = []entity.LeaderboardEntry{}
	}

	that.writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}

// writeMatch answers with the match view. A rejected move still carries the
// unchanged match next to the error.
func (that *Handlers) writeMatch(w http.ResponseWriter, status int, match *entity.Match, err error) {
	if err != nil {
		that.writeError(w, err, match)
		return
	}

	that.writeJSON(w, status, matchResponse{Match: view.FromMatch(match)})
}

func (that *Handlers) writeError(w http.ResponseWriter, err error, match *entity.Match) {
	status := StatusCode(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, matchResponse{Match: view.FromMatch(match), Error: message})
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

// StatusCode maps domain errors to HTTP statuses.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, apperror.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrRoundOver),
		errors.Is(err, apperror.ErrCellOccupied):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
