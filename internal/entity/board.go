package entity

const (
	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""

	BoardSize = 9
)

type Outcome string

const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeWin     Outcome = "win"
	OutcomeDraw    Outcome = "draw"
)

// WinCombos lists every winning triple in scan order: rows, columns, diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid stored row-major.
type Board [BoardSize]string

// WinnerInfo describes a completed line.
type WinnerInfo struct {
	Player string `json:"player"`
	Line   [3]int `json:"line"`
}

// Has reports whether cell is part of the winning line.
func (that *WinnerInfo) Has(cell int) bool {
	if that == nil {
		return false
	}

	for _, c := range that.Line {
		if c == cell {
			return true
		}
	}

	return false
}

// CalculateWinner returns the first completed line in WinCombos order, or nil.
func CalculateWinner(board Board) *WinnerInfo {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return &WinnerInfo{Player: a, Line: combo}
		}
	}

	return nil
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Filled counts non-empty cells.
func (that Board) Filled() int {
	n := 0
	for _, cell := range that {
		if cell != EmptyCell {
			n++
		}
	}

	return n
}

// DetermineOutcome classifies a board. The winner is nil unless the outcome is OutcomeWin.
func DetermineOutcome(board Board) (Outcome, *WinnerInfo) {
	if winner := CalculateWinner(board); winner != nil {
		return OutcomeWin, winner
	}

	// the round continues while any square is empty
	if !board.IsFull() {
		return OutcomeOngoing, nil
	}

	return OutcomeDraw, nil
}

// Opponent returns the other mark.
func Opponent(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}

func IsMark(mark string) bool {
	return mark == MarkX || mark == MarkO
}
