package tictactoe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Board {
	t.Helper()

	board, err := ParseBoard(s)
	require.NoError(t, err)

	return board
}

func countMarks(board Board) (int, int) {
	return board.counts()
}

func TestInitialState(t *testing.T) {
	// When: creating the initial board
	board := InitialState()

	// Then: all 9 cells are empty and X moves first
	assert.Len(t, board.Actions(), 9)
	assert.Equal(t, X, board.Player())
	assert.False(t, board.Terminal())
	assert.Equal(t, InProgress, board.Outcome())
}

func TestBoard_Player(t *testing.T) {
	t.Run("O moves after X", func(t *testing.T) {
		// Given: a board with one X
		board := mustParse(t, "X../.../...")

		// Then: it is O's turn
		assert.Equal(t, O, board.Player())
	})

	t.Run("X moves when counts are equal", func(t *testing.T) {
		// Given: a board with one X and one O
		board := mustParse(t, "X../.O./...")

		// Then: it is X's turn
		assert.Equal(t, X, board.Player())
	})
}

func TestBoard_Actions(t *testing.T) {
	t.Run("Lists only empty cells", func(t *testing.T) {
		// Given: a board with three marks
		board := mustParse(t, "X.O/.X./...")

		// When: listing the actions
		actions := board.Actions()

		// Then: the occupied cells are missing and every action is unique
		assert.Len(t, actions, 6)
		assert.NotContains(t, actions, Action{0, 0})
		assert.NotContains(t, actions, Action{0, 2})
		assert.NotContains(t, actions, Action{1, 1})

		seen := make(map[Action]bool)
		for _, action := range actions {
			assert.False(t, seen[action], "duplicate action %s", action)
			seen[action] = true
		}
	})

	t.Run("Full board has no actions", func(t *testing.T) {
		// Given: a full board
		board := mustParse(t, "XOX/XOO/OXX")

		// Then: no actions are available
		assert.Empty(t, board.Actions())
	})
}

func TestBoard_Result(t *testing.T) {
	t.Run("Places the mover's mark without touching the input", func(t *testing.T) {
		// Given: a board where O is to move
		board := mustParse(t, "X../.../...")
		before := board

		// When: O plays the center
		next, err := board.Result(Action{1, 1})
		require.NoError(t, err)

		// Then: the original board is unchanged and the new board differs only at the center
		assert.Equal(t, before, board)
		assert.Equal(t, CellO, next.At(Action{1, 1}))
		for row := range Size {
			for col := range Size {
				if row == 1 && col == 1 {
					continue
				}
				assert.Equal(t, board[row][col], next[row][col])
			}
		}
	})

	t.Run("Fails on an occupied cell", func(t *testing.T) {
		// Given: a board with X in the corner
		board := mustParse(t, "X../.../...")

		// When: playing the same corner
		_, err := board.Result(Action{0, 0})

		// Then: ErrInvalidAction is returned
		require.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("Fails on out of range coordinates", func(t *testing.T) {
		board := InitialState()

		for _, action := range []Action{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}} {
			_, err := board.Result(action)
			assert.ErrorIs(t, err, ErrInvalidAction, "action %s", action)
		}
	})

	t.Run("Every action removes exactly one candidate", func(t *testing.T) {
		// Given: a board in progress
		board := mustParse(t, "X.O/.X./...")

		for _, action := range board.Actions() {
			// When: playing the action
			next, err := board.Result(action)
			require.NoError(t, err)

			// Then: the cell is no longer available and one action less remains
			assert.NotContains(t, next.Actions(), action)
			assert.Len(t, next.Actions(), len(board.Actions())-1)
		}
	})
}

func TestBoard_MarkCountsStayBalanced(t *testing.T) {
	// Given: every board reachable by play from the initial state
	var walk func(board Board)
	walk = func(board Board) {
		countX, countO := countMarks(board)
		diff := countX - countO
		require.True(t, diff == 0 || diff == 1, "board %s has X-O=%d", board, diff)
		require.NoError(t, board.Validate())

		if board.Terminal() {
			return
		}

		for _, action := range board.Actions() {
			next, err := board.Result(action)
			require.NoError(t, err)
			walk(next)
		}
	}

	// Then: X is never behind and never ahead by more than one
	walk(InitialState())
}

func TestBoard_Winner(t *testing.T) {
	tests := []struct {
		name   string
		board  string
		winner Player
		ok     bool
	}{
		{name: "row", board: "XXX/OO./...", winner: X, ok: true},
		{name: "column", board: "OX./OX./O.X", winner: O, ok: true},
		{name: "main diagonal", board: "XO./OX./..X", winner: X, ok: true},
		{name: "anti diagonal", board: "XXO/XO./O..", winner: O, ok: true},
		{name: "no winner", board: "XO./.X./..O", ok: false},
		{name: "empty", board: ".../.../...", ok: false},
		{name: "X takes priority over O", board: "XXX/OOO/...", winner: X, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, ok := mustParse(t, tt.board).Winner()

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.winner, winner)
			}
		})
	}
}

func TestBoard_TerminalAndUtility(t *testing.T) {
	t.Run("X win", func(t *testing.T) {
		board := mustParse(t, "XXX/OO./...")

		assert.True(t, board.Terminal())
		assert.Equal(t, 1, board.Utility())
		assert.Equal(t, WinX, board.Outcome())
	})

	t.Run("O win", func(t *testing.T) {
		board := mustParse(t, "XX./OOO/X..")

		assert.True(t, board.Terminal())
		assert.Equal(t, -1, board.Utility())
		assert.Equal(t, WinO, board.Outcome())
	})

	t.Run("Full board without a winner", func(t *testing.T) {
		// Given: a drawn board
		board := mustParse(t, "XOX/XOO/OXX")

		// Then: it is terminal, has no winner and is worth 0
		_, ok := board.Winner()
		assert.False(t, ok)
		assert.True(t, board.Terminal())
		assert.Equal(t, 0, board.Utility())
		assert.Equal(t, Draw, board.Outcome())
	})

	t.Run("Game in progress", func(t *testing.T) {
		board := mustParse(t, "XO./.X./...")

		assert.False(t, board.Terminal())
		assert.Equal(t, 0, board.Utility())
	})
}

func TestBoard_Validate(t *testing.T) {
	t.Run("Accepts reachable counts", func(t *testing.T) {
		assert.NoError(t, mustParse(t, "X../.../...").Validate())
		assert.NoError(t, mustParse(t, "XO./.../...").Validate())
	})

	t.Run("Rejects O ahead of X", func(t *testing.T) {
		err := mustParse(t, "OO./X../...").Validate()
		assert.ErrorIs(t, err, ErrInvalidBoard)
	})

	t.Run("Rejects X two ahead", func(t *testing.T) {
		err := mustParse(t, "XX./X../O..").Validate()
		assert.ErrorIs(t, err, ErrInvalidBoard)
	})

	t.Run("Rejects unknown cell values", func(t *testing.T) {
		var board Board
		board[2][2] = Cell(7)

		assert.ErrorIs(t, board.Validate(), ErrInvalidBoard)
	})
}

func TestParseBoard(t *testing.T) {
	t.Run("Round trips through String", func(t *testing.T) {
		board := mustParse(t, "X.O/.X./O..")

		assert.Equal(t, "X.O/.X./O..", board.String())
	})

	t.Run("Accepts the alternative separators", func(t *testing.T) {
		board := mustParse(t, "x-o|_X_|o  ")

		assert.Equal(t, "X.O/.X./O..", board.String())
	})

	t.Run("Rejects wrong lengths and symbols", func(t *testing.T) {
		for _, s := range []string{"", "XO", "X.O/.X./O...", "X.O/.Z./O.."} {
			_, err := ParseBoard(s)
			assert.ErrorIs(t, err, ErrInvalidBoard, "input %q", s)
		}
	})
}

func TestBoard_JSON(t *testing.T) {
	t.Run("Encodes as a flat array", func(t *testing.T) {
		board := mustParse(t, "X.O/.X./...")

		data, err := json.Marshal(board)
		require.NoError(t, err)

		assert.JSONEq(t, `["X","","O","","X","","","",""]`, string(data))
	})

	t.Run("Decodes a flat array", func(t *testing.T) {
		var board Board
		err := json.Unmarshal([]byte(`["X","","O","","X","","","",""]`), &board)
		require.NoError(t, err)

		assert.Equal(t, mustParse(t, "X.O/.X./..."), board)
	})

	t.Run("Rejects unknown marks and wrong sizes", func(t *testing.T) {
		var board Board

		assert.ErrorIs(t, json.Unmarshal([]byte(`["Z","","","","","","","",""]`), &board), ErrInvalidBoard)
		assert.ErrorIs(t, json.Unmarshal([]byte(`["X"]`), &board), ErrInvalidBoard)
		assert.ErrorIs(t, json.Unmarshal([]byte(`{}`), &board), ErrInvalidBoard)
	})

	t.Run("Null keeps the board", func(t *testing.T) {
		// Given: a board already holding moves
		board := mustParse(t, "X.O/.X./...")

		// When: decoding null into it, directly and as an object field
		require.NoError(t, json.Unmarshal([]byte(`null`), &board))

		var state struct {
			Board Board `json:"board"`
		}
		state.Board = board
		require.NoError(t, json.Unmarshal([]byte(`{"board":null}`), &state))

		// Then: nothing changes
		assert.Equal(t, mustParse(t, "X.O/.X./..."), board)
		assert.Equal(t, board, state.Board)
	})
}

func TestActionFromIndex(t *testing.T) {
	for i := range Size * Size {
		action, err := ActionFromIndex(i)
		require.NoError(t, err)
		assert.Equal(t, i, action.Index())
	}

	_, err := ActionFromIndex(9)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = ActionFromIndex(-1)
	assert.ErrorIs(t, err, ErrInvalidAction)
}
