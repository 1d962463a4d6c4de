package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-hotseat/transport/view"
)

const (
	ActionNewMatch      = "match:new"
	ActionJoinMatch     = "match:join"
	ActionTurn          = "match:turn"
	ActionJump          = "match:jump"
	ActionNewRound      = "round:new"
	ActionResetScores   = "score:reset"
	ActionCoinFlip      = "roles:flip"
	ActionSwapRoles     = "roles:swap"
	ActionRenamePlayers = "players:rename"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	MatchID   string `json:"match_id,omitempty"`
	Cell      *int   `json:"cell,omitempty"`
	Move      *int   `json:"move,omitempty"`
	PlayerOne string `json:"player_one,omitempty"`
	PlayerTwo string `json:"player_two,omitempty"`
}

type ResponsePayload struct {
	Match *view.Match `json:"match,omitempty"`
	Error string      `json:"error,omitempty"`
}

func newResponse(action string, payload ResponsePayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: raw})
}
