package entity

import "time"

// RoundRecord is the archived summary of one finished round.
type RoundRecord struct {
	ID         string    `json:"id"`
	MatchID    string    `json:"match_id"`
	Round      int       `json:"round"`
	XName      string    `json:"x_name"`
	OName      string    `json:"o_name"`
	WinnerMark string    `json:"winner_mark,omitempty"`
	WinnerName string    `json:"winner_name,omitempty"`
	Line       []int     `json:"line,omitempty"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRoundRecord summarises the displayed board of a finished match.
func NewRoundRecord(id string, match Match, finishedAt time.Time) RoundRecord {
	board := match.CurrentBoard()

	record := RoundRecord{
		ID:         id,
		MatchID:    match.ID,
		Round:      match.Round,
		XName:      match.Roles.X,
		OName:      match.Roles.O,
		Moves:      board.Filled(),
		FinishedAt: finishedAt,
	}

	if winner := CalculateWinner(board); winner != nil {
		record.WinnerMark = winner.Player
		record.WinnerName = match.Roles.NameOf(winner.Player)
		record.Line = winner.Line[:]
	}

	return record
}

func (that RoundRecord) IsDraw() bool {
	return that.WinnerMark == ""
}

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
	Rounds int    `json:"rounds"`
}
