package entity

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
)

const (
	DefaultPlayerOne = "Player 1"
	DefaultPlayerTwo = "Player 2"
)

// Roles maps each mark to the name of the player using it.
type Roles struct {
	X string `json:"X"`
	O string `json:"O"`
}

func (that Roles) NameOf(mark string) string {
	if mark == MarkO {
		return that.O
	}
	return that.X
}

type Scores struct {
	X     int `json:"X"`
	O     int `json:"O"`
	Draws int `json:"draws"`
}

func (that Scores) add(outcome Outcome, winner *WinnerInfo) Scores {
	switch {
	case outcome == OutcomeDraw:
		that.Draws++
	case outcome == OutcomeWin && winner.Player == MarkX:
		that.X++
	case outcome == OutcomeWin && winner.Player == MarkO:
		that.O++
	}

	return that
}

// Match is the whole state of a hot-seat game: the current round's history,
// role assignment and the running score. Transitions never mutate the
// receiver; they return the next state.
type Match struct {
	ID           string    `json:"id"`
	PlayerOne    string    `json:"player_one"`
	PlayerTwo    string    `json:"player_two"`
	Roles        Roles     `json:"roles"`
	History      []Board   `json:"history"`
	CurrentMove  int       `json:"current_move"`
	StartingMark string    `json:"starting_mark"`
	Scores       Scores    `json:"scores"`
	RoundOver    bool      `json:"round_over"`
	Round        int       `json:"round"`
	Note         string    `json:"note,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewMatch(id, playerOne, playerTwo string) Match {
	match := Match{
		ID:        id,
		PlayerOne: playerOne,
		PlayerTwo: playerTwo,
	}

	match.Roles = Roles{X: match.playerOneName(), O: match.playerTwoName()}
	match.StartingMark = MarkX
	match.History = []Board{{}}

	return match.withRound(1)
}

func (that Match) CurrentBoard() Board {
	return that.History[that.CurrentMove]
}

// NextMark is the mark placed by the next click, derived from move parity and
// the round's opening mark.
func (that Match) NextMark() string {
	if that.CurrentMove%2 == 0 {
		return that.StartingMark
	}
	return Opponent(that.StartingMark)
}

func (that Match) Outcome() (Outcome, *WinnerInfo) {
	return DetermineOutcome(that.CurrentBoard())
}

func (that Match) Winner() *WinnerInfo {
	return CalculateWinner(that.CurrentBoard())
}

func (that Match) IsDraw() bool {
	outcome, _ := that.Outcome()
	return outcome == OutcomeDraw
}

// Status is the one-line summary shown above the board.
func (that Match) Status() string {
	switch outcome, winner := that.Outcome(); outcome {
	case OutcomeWin:
		return fmt.Sprintf("Winner: %s (%s)", that.Roles.NameOf(winner.Player), winner.Player)
	case OutcomeDraw:
		return "Draw!"
	default:
		next := that.NextMark()
		return fmt.Sprintf("Next: %s (%s)", that.Roles.NameOf(next), next)
	}
}

// Play places the next mark on cell. A rejected click returns the receiver
// unchanged together with the reason. A move that ends the round is scored
// in the returned state, so a finished round is never scored twice.
func (that Match) Play(cell int) (Match, error) {
	if cell < 0 || cell >= BoardSize {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	board := that.CurrentBoard()
	if that.RoundOver || CalculateWinner(board) != nil {
		return that, apperror.ErrRoundOver
	}

	if board[cell] != EmptyCell {
		return that, apperror.ErrCellOccupied
	}

	board[cell] = that.NextMark()

	// drop the redo tail past the displayed board
	history := make([]Board, that.CurrentMove+1, that.CurrentMove+2)
	copy(history, that.History[:that.CurrentMove+1])

	next := that
	next.History = append(history, board)
	next.CurrentMove = len(next.History) - 1

	if outcome, winner := DetermineOutcome(board); outcome != OutcomeOngoing {
		next.Scores = next.Scores.add(outcome, winner)
		next.RoundOver = true
	}

	return next, nil
}

// JumpTo displays an earlier (or later) board of the current round.
func (that Match) JumpTo(move int) (Match, error) {
	if move < 0 || move >= len(that.History) {
		return that, fmt.Errorf("%w: move %d of %d", apperror.ErrInvalidMove, move, len(that.History))
	}

	next := that.clone()
	next.CurrentMove = move

	return next, nil
}

// NewRound clears the board and hands the opening move to the other mark.
func (that Match) NewRound() Match {
	next := that.withRound(that.Round + 1)
	next.StartingMark = Opponent(that.StartingMark)

	return next
}

func (that Match) ResetScores() Match {
	next := that.clone()
	next.Scores = Scores{}

	return next
}

// CoinFlip assigns player one to X on heads and to O on tails, then starts a
// fresh round opened by X.
func (that Match) CoinFlip(heads bool) Match {
	xName, oName := that.playerOneName(), that.playerTwoName()
	if !heads {
		xName, oName = oName, xName
	}

	next := that.withRound(that.Round + 1)
	next.Roles = Roles{X: xName, O: oName}
	next.StartingMark = MarkX
	next.Note = fmt.Sprintf("Coinflip: %s is X, %s is O.", xName, oName)

	return next
}

// SwapRoles exchanges the X and O players and starts a fresh round opened by X.
func (that Match) SwapRoles() Match {
	next := that.withRound(that.Round + 1)
	next.Roles = Roles{X: that.Roles.O, O: that.Roles.X}
	next.StartingMark = MarkX
	next.Note = fmt.Sprintf("Swapped: %s is now X.", that.Roles.O)

	return next
}

// Rename changes the typed player names. Roles pick them up on the next coin flip.
func (that Match) Rename(playerOne, playerTwo string) Match {
	next := that.clone()
	next.PlayerOne = playerOne
	next.PlayerTwo = playerTwo

	return next
}

func (that Match) withRound(round int) Match {
	next := that
	next.History = []Board{{}}
	next.CurrentMove = 0
	next.RoundOver = false
	next.Round = round

	return next
}

func (that Match) clone() Match {
	next := that
	next.History = make([]Board, len(that.History))
	copy(next.History, that.History)

	return next
}

func (that Match) playerOneName() string {
	if that.PlayerOne == "" {
		return DefaultPlayerOne
	}
	return that.PlayerOne
}

func (that Match) playerTwoName() string {
	if that.PlayerTwo == "" {
		return DefaultPlayerTwo
	}
	return that.PlayerTwo
}

// FlipCoin reports heads with probability one half.
func FlipCoin() bool {
	return rand.Intn(2) == 0 //nolint: gosec // it's ok
}
