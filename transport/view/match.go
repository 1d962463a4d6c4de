package view

import "github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"

type Winner struct {
	Player string `json:"player"`
	Line   [3]int `json:"line"`
}

// Match is the client-facing snapshot of a match: the displayed board plus
// everything a client needs to render it without re-deriving game rules.
type Match struct {
	ID          string        `json:"id"`
	Board       entity.Board  `json:"board"`
	Status      string        `json:"status"`
	Next        string        `json:"next,omitempty"`
	Winner      *Winner       `json:"winner,omitempty"`
	Draw        bool          `json:"draw"`
	RoundOver   bool          `json:"round_over"`
	Roles       entity.Roles  `json:"roles"`
	Scores      entity.Scores `json:"scores"`
	Starting    string        `json:"starting"`
	CurrentMove int           `json:"current_move"`
	HistoryLen  int           `json:"history_len"`
	Round       int           `json:"round"`
	Note        string        `json:"note,omitempty"`
	PlayerOne   string        `json:"player_one"`
	PlayerTwo   string        `json:"player_two"`
}

func FromMatch(match *entity.Match) *Match {
	if match == nil {
		return nil
	}

	outcome, winner := match.Outcome()

	view := &Match{
		ID:          match.ID,
		Board:       match.CurrentBoard(),
		Status:      match.Status(),
		Draw:        outcome == entity.OutcomeDraw,
		RoundOver:   match.RoundOver,
		Roles:       match.Roles,
		Scores:      match.Scores,
		Starting:    match.StartingMark,
		CurrentMove: match.CurrentMove,
		HistoryLen:  len(match.History),
		Round:       match.Round,
		Note:        match.Note,
		PlayerOne:   match.PlayerOne,
		PlayerTwo:   match.PlayerTwo,
	}

	if outcome == entity.OutcomeOngoing {
		view.Next = match.NextMark()
	}

	if winner != nil {
		view.Winner = &Winner{Player: winner.Player, Line: winner.Line}
	}

	return view
}
