package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	lip "github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const boardSide = 3

var (
	winStyle    = lip.NewStyle().Foreground(lip.Color("#50FA7B")).Bold(true)
	xStyle      = lip.NewStyle().Foreground(lip.Color("#8BE9FD"))
	oStyle      = lip.NewStyle().Foreground(lip.Color("#FF79C6"))
	headerStyle = lip.NewStyle().Foreground(lip.Color("#F1FA8C")).Bold(true)
	footerStyle = lip.NewStyle().Foreground(lip.Color("#6272A4"))
	noteStyle   = lip.NewStyle().Foreground(lip.Color("#FFB86C"))
	cellStyle   = lip.NewStyle().Foreground(lip.Color("#BD93F9"))
	cursorStyle = lip.NewStyle().Background(lip.Color("#44475A")).Bold(true)
)

const help = "arrows move · enter play · [ ] history · n new round · r reset scores · c coin flip · s swap · q quit"

// Model is a local hot-seat game: both players share one keyboard.
type Model struct {
	match  entity.Match
	cursor int
	coin   func() bool
}

func New(playerOne, playerTwo string) Model {
	return Model{
		match:  entity.NewMatch("local", playerOne, playerTwo),
		cursor: entity.BoardSize / 2,
		coin:   entity.FlipCoin,
	}
}

func (that Model) Match() entity.Match {
	return that.match
}

func (that Model) Init() tea.Cmd {
	return nil
}

func (that Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return that, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return that, tea.Quit
	case "up", "k":
		that.cursor = (that.cursor + entity.BoardSize - boardSide) % entity.BoardSize
	case "down", "j":
		that.cursor = (that.cursor + boardSide) % entity.BoardSize
	case "left", "h":
		that.cursor = that.cursor - that.cursor%boardSide + (that.cursor+boardSide-1)%boardSide
	case "right", "l":
		that.cursor = that.cursor - that.cursor%boardSide + (that.cursor+1)%boardSide
	case "enter", " ":
		// rejected clicks leave the match as it was
		that.match, _ = that.match.Play(that.cursor)
	case "[":
		that.match, _ = that.match.JumpTo(that.match.CurrentMove - 1)
	case "]":
		that.match, _ = that.match.JumpTo(that.match.CurrentMove + 1)
	case "n":
		that.match = that.match.NewRound()
	case "r":
		that.match = that.match.ResetScores()
	case "c":
		that.match = that.match.CoinFlip(that.coin())
	case "s":
		that.match = that.match.SwapRoles()
	}

	return that, nil
}

func (that Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(that.match.Status()))
	b.WriteString("\n\n")
	b.WriteString(that.renderBoard())
	b.WriteString("\n\n")

	scores := that.match.Scores
	fmt.Fprintf(&b, "%s %d   %s %d   Draws %d\n",
		xStyle.Render(that.match.Roles.X+" (X)"), scores.X,
		oStyle.Render(that.match.Roles.O+" (O)"), scores.O,
		scores.Draws,
	)
	fmt.Fprintf(&b, "Round %d · move %d/%d\n", that.match.Round, that.match.CurrentMove, len(that.match.History)-1)

	if that.match.Note != "" {
		b.WriteString(noteStyle.Render(that.match.Note))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(help))
	b.WriteString("\n")

	return b.String()
}

func (that Model) renderBoard() string {
	board := that.match.CurrentBoard()
	winner := that.match.Winner()

	rows := make([]string, 0, boardSide)
	for row := range boardSide {
		cells := make([]string, 0, boardSide)
		for col := range boardSide {
			cell := row*boardSide + col
			cells = append(cells, that.renderCell(cell, board[cell], winner.Has(cell)))
		}
		rows = append(rows, strings.Join(cells, cellStyle.Render("│")))
	}

	return strings.Join(rows, "\n"+cellStyle.Render("───┼───┼───")+"\n")
}

func (that Model) renderCell(cell int, mark string, winning bool) string {
	text := " " + mark + " "
	if mark == entity.EmptyCell {
		text = "   "
	}

	var style lip.Style
	switch {
	case winning:
		style = winStyle
	case mark == entity.MarkX:
		style = xStyle
	case mark == entity.MarkO:
		style = oStyle
	default:
		style = cellStyle
	}

	if cell == that.cursor {
		style = style.Inherit(cursorStyle)
	}

	return style.Render(text)
}

func Run(playerOne, playerTwo string) error {
	if _, err := tea.NewProgram(New(playerOne, playerTwo)).Run(); err != nil {
		return fmt.Errorf("failed to run terminal ui: %w", err)
	}

	return nil
}
