package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/view"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
	maxMessageSize  = 4096

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var (
	errUnknownAction = errors.New("unknown action")
	errBadPayload    = errors.New("bad payload")
	errNoMatch       = errors.New("no match selected")
)

type matchService interface {
	CreateMatch(ctx context.Context, playerOne, playerTwo string) (*entity.Match, error)
	GetMatch(ctx context.Context, id string) (*entity.Match, error)

	Play(ctx context.Context, id string, cell int) (*entity.Match, error)
	JumpTo(ctx context.Context, id string, move int) (*entity.Match, error)
	NewRound(ctx context.Context, id string) (*entity.Match, error)
	ResetScores(ctx context.Context, id string) (*entity.Match, error)
	CoinFlip(ctx context.Context, id string) (*entity.Match, error)
	SwapRoles(ctx context.Context, id string) (*entity.Match, error)
	RenamePlayers(ctx context.Context, id, playerOne, playerTwo string) (*entity.Match, error)
}

type handlerFunc func(ctx context.Context, matchID string, payload *RequestPayload) (*entity.Match, error)

type Server struct {
	logger  *slog.Logger
	matches matchService

	upgrader websocket.Upgrader
	hub      *hub

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, matches matchService) *Server {
	server := &Server{
		logger:  logger,
		matches: matches,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			// browsers on any origin may drive a local hot-seat board
			CheckOrigin: func(*http.Request) bool { return true },
		},
		hub: newHub(),

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[ActionNewMatch] = server.handleNewMatch
	server.handlers[ActionJoinMatch] = server.handleJoinMatch
	server.handlers[ActionTurn] = server.handleTurn
	server.handlers[ActionJump] = server.handleJump
	server.handlers[ActionNewRound] = server.handleNewRound
	server.handlers[ActionResetScores] = server.handleResetScores
	server.handlers[ActionCoinFlip] = server.handleCoinFlip
	server.handlers[ActionSwapRoles] = server.handleSwapRoles
	server.handlers[ActionRenamePlayers] = server.handleRenamePlayers

	return server
}

func (that *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Get("/ws", that.ServeWS)

	return router
}

// ServeWS upgrades the connection and processes messages until the client leaves.
func (that *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn}

	defer func() {
		that.hub.leave(c)
		conn.Close()
	}()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	done := make(chan struct{})
	defer close(done)

	go that.keepAlive(c, done)

	if err = that.handleMessages(r.Context(), c); err != nil {
		log.Debug("connection closed", "error", err)
	}
}

func (that *Server) keepAlive(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages")

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.reply(c, "", ResponsePayload{Error: errBadPayload.Error()})
			continue
		}

		if err = that.dispatch(ctx, c, &message); err != nil {
			log.Debug("message rejected", "action", message.Action, "error", err)
		}
	}
}

// dispatch runs one action. Mutations are broadcast to every connection
// following the match; new and join replies go to the sender only.
func (that *Server) dispatch(ctx context.Context, c *client, message *Message) error {
	handler, ok := that.handlers[message.Action]
	if !ok {
		that.reply(c, message.Action, ResponsePayload{Error: errUnknownAction.Error()})
		return errUnknownAction
	}

	var payload RequestPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			that.reply(c, message.Action, ResponsePayload{Error: errBadPayload.Error()})
			return fmt.Errorf("%w: %w", errBadPayload, err)
		}
	}

	matchID := payload.MatchID
	if matchID == "" {
		matchID = that.hub.matchOf(c)
	}

	match, err := handler(ctx, matchID, &payload)
	if err != nil {
		that.reply(c, message.Action, ResponsePayload{Match: view.FromMatch(match), Error: err.Error()})
		return err
	}

	response := ResponsePayload{Match: view.FromMatch(match)}

	switch message.Action {
	case ActionNewMatch, ActionJoinMatch:
		that.hub.join(c, match.ID)
		that.reply(c, message.Action, response)
	default:
		if that.hub.matchOf(c) != match.ID {
			that.reply(c, message.Action, response)
		}
		that.broadcast(match.ID, message.Action, response)
	}

	return nil
}

func (that *Server) reply(c *client, action string, payload ResponsePayload) {
	data, err := newResponse(action, payload)
	if err != nil {
		that.logger.Error("failed to marshal response", "error", err)
		return
	}

	if err = c.write(websocket.TextMessage, data); err != nil {
		that.logger.Error("failed to send message", "error", err)
	}
}

func (that *Server) broadcast(matchID, action string, payload ResponsePayload) {
	data, err := newResponse(action, payload)
	if err != nil {
		that.logger.Error("failed to marshal response", "error", err)
		return
	}

	for _, c := range that.hub.subscribers(matchID) {
		if err = c.write(websocket.TextMessage, data); err != nil {
			that.logger.Error("failed to broadcast message", "match_id", matchID, "error", err)
		}
	}
}
