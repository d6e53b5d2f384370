package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

var (
	xStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#007e50ff", Dark: "#6afd76ff"}).Render
	oStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0003adff", Dark: "#5f61fcff"}).Render
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#960000ff", Dark: "#fc7e7eff"}).Render
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8a880fff", Dark: "#ddda1dff"}).Render
	bracketStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#414141ff", Dark: "#8f8f8fff"}).Render
	winStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#bb0000ff", Dark: "#df1010ff"}).Render
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#4204b5ff", Dark: "#8f6cf0ff"}).Render
)

type botMovedMsg struct {
	round  int
	action tictactoe.Action
	ok     bool
}

type model struct {
	board  tictactoe.Board
	human  tictactoe.Player
	cursor tictactoe.Action

	hint     *tictactoe.Action
	thinking bool
	notice   string

	// round counts restarts; bot replies from an earlier round are dropped.
	round int
}

func newModel(human tictactoe.Player) model {
	return model{
		board:  tictactoe.InitialState(),
		human:  human,
		cursor: tictactoe.Action{Row: 1, Col: 1},
	}
}

func (m model) Init() tea.Cmd {
	if m.botTurn() {
		return botMove(m.board, m.round)
	}

	return nil
}

func (m model) botTurn() bool {
	return !m.board.Terminal() && m.board.Player() != m.human
}

// botMove - runs minimax off the UI goroutine.
func botMove(board tictactoe.Board, round int) tea.Cmd {
	return func() tea.Msg {
		action, ok := tictactoe.Minimax(board)
		return botMovedMsg{round: round, action: action, ok: ok}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case botMovedMsg:
		if msg.round != m.round {
			return m, nil
		}

		m.thinking = false
		if !msg.ok {
			return m, nil
		}

		board, err := m.board.Result(msg.action)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}

		m.board = board
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "r":
		next := newModel(m.human)
		next.round = m.round + 1
		next.thinking = next.botTurn()
		return next, next.Init()

	case "up":
		m.cursor.Row = (m.cursor.Row + tictactoe.Size - 1) % tictactoe.Size
	case "down":
		m.cursor.Row = (m.cursor.Row + 1) % tictactoe.Size
	case "left":
		m.cursor.Col = (m.cursor.Col + tictactoe.Size - 1) % tictactoe.Size
	case "right":
		m.cursor.Col = (m.cursor.Col + 1) % tictactoe.Size

	case "h":
		if m.board.Terminal() || m.thinking {
			return m, nil
		}

		if action, ok := tictactoe.Minimax(m.board); ok {
			m.hint = &action
		}

	case "enter", " ":
		if m.board.Terminal() || m.thinking || m.botTurn() {
			return m, nil
		}

		board, err := m.board.Result(m.cursor)
		if err != nil {
			m.notice = "cell " + m.cursor.String() + " is taken"
			return m, nil
		}

		m.board = board
		m.hint = nil
		m.notice = ""

		if m.botTurn() {
			m.thinking = true
			return m, botMove(m.board, m.round)
		}
	}

	return m, nil
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(headerStyle("--- tic tac toe ---") + "\n\n")
	s.WriteString(m.status() + "\n\n")

	winning := m.winningLine()

	for row := range tictactoe.Size {
		for col := range tictactoe.Size {
			action := tictactoe.Action{Row: row, Col: col}
			s.WriteString(m.renderCell(action, winning[action]))
		}
		s.WriteString("\n")
	}

	if m.notice != "" {
		s.WriteString("\n" + cursorStyle(m.notice) + "\n")
	}

	s.WriteString("\n" + helpStyle("arrows: move • enter: play • h: hint • r: restart • q: quit") + "\n")

	return s.String()
}

func (m model) status() string {
	switch m.board.Outcome() {
	case tictactoe.Draw:
		return "Draw."
	case tictactoe.WinX, tictactoe.WinO:
		winner, _ := m.board.Winner()
		if winner == m.human {
			return "You win!"
		}
		return "The bot wins."
	}

	if m.thinking || m.botTurn() {
		return "Bot is thinking..."
	}

	status := fmt.Sprintf("Your turn (%s)", m.mark(m.human))
	if m.hint != nil {
		status += ", hint: " + hintStyle(m.hint.String())
	}

	return status
}

func (m model) renderCell(action tictactoe.Action, winning bool) string {
	bracket := bracketStyle
	if winning {
		bracket = winStyle
	}

	mark := " "
	switch {
	case m.board.At(action) != tictactoe.Empty:
		player, _ := m.board.At(action).Player()
		mark = m.mark(player)
	case m.hint != nil && *m.hint == action:
		mark = hintStyle("?")
	}

	if action == m.cursor && !m.board.Terminal() {
		return cursorStyle("[") + mark + cursorStyle("]")
	}

	return bracket("[") + mark + bracket("]")
}

func (m model) mark(player tictactoe.Player) string {
	if player == tictactoe.X {
		return xStyle(player.String())
	}

	return oStyle(player.String())
}

func (m model) winningLine() map[tictactoe.Action]bool {
	winner, ok := m.board.Winner()
	if !ok {
		return nil
	}

	for _, line := range tictactoe.Lines {
		complete := true
		for _, action := range line {
			if m.board.At(action) != winner.Cell() {
				complete = false
				break
			}
		}

		if complete {
			cells := make(map[tictactoe.Action]bool, len(line))
			for _, action := range line {
				cells[action] = true
			}
			return cells
		}
	}

	return nil
}
