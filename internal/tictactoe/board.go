package tictactoe

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the side length of the board.
const Size = 3

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidBoard  = errors.New("invalid board")
)

// Lines holds every winning line: 3 rows, 3 columns and 2 diagonals.
var Lines = [8][3]Action{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is a 3x3 grid. It is an array, so plain assignment copies it.
type Board [Size][Size]Cell

// InitialState - returns the empty board.
func InitialState() Board {
	return Board{}
}

// Player - returns the player whose turn it is.
// The board must be reachable by valid play from InitialState; see Validate.
func (that Board) Player() Player {
	countX, countO := that.counts()
	if countX > countO {
		return O
	}

	return X
}

// Actions - returns every empty cell in row-major order.
func (that Board) Actions() []Action {
	actions := make([]Action, 0, Size*Size)
	for row := range Size {
		for col := range Size {
			if that[row][col] == Empty {
				actions = append(actions, Action{Row: row, Col: col})
			}
		}
	}

	return actions
}

// Result - returns a new board with the current player's mark placed at action.
func (that Board) Result(action Action) (Board, error) {
	if !action.Valid() {
		return that, fmt.Errorf("%w: %s is out of range", ErrInvalidAction, action)
	}

	if that.At(action) != Empty {
		return that, fmt.Errorf("%w: %s is occupied", ErrInvalidAction, action)
	}

	next := that
	next[action.Row][action.Col] = that.Player().Cell()

	return next, nil
}

// Winner - returns the player owning a full line. X is checked first.
func (that Board) Winner() (Player, bool) {
	for _, player := range [...]Player{X, O} {
		if that.hasLine(player.Cell()) {
			return player, true
		}
	}

	return 0, false
}

func (that Board) Terminal() bool {
	if _, ok := that.Winner(); ok {
		return true
	}

	return that.Full()
}

// Utility - returns +1 if X won, -1 if O won, 0 otherwise.
func (that Board) Utility() int {
	winner, ok := that.Winner()
	switch {
	case !ok:
		return 0
	case winner == X:
		return 1
	default:
		return -1
	}
}

func (that Board) Outcome() Outcome {
	if winner, ok := that.Winner(); ok {
		if winner == X {
			return WinX
		}
		return WinO
	}

	if that.Full() {
		return Draw
	}

	return InProgress
}

func (that Board) Full() bool {
	for row := range Size {
		for col := range Size {
			if that[row][col] == Empty {
				return false
			}
		}
	}

	return true
}

func (that Board) At(action Action) Cell {
	return that[action.Row][action.Col]
}

// Validate - checks that every cell holds a known value and that the mark counts
// could come from alternating play with X first.
func (that Board) Validate() error {
	for row := range Size {
		for col := range Size {
			if !that[row][col].Valid() {
				return fmt.Errorf("%w: unknown cell value %d at (%d, %d)", ErrInvalidBoard, that[row][col], row, col)
			}
		}
	}

	countX, countO := that.counts()
	if countX != countO && countX != countO+1 {
		return fmt.Errorf("%w: %d X marks against %d O marks", ErrInvalidBoard, countX, countO)
	}

	return nil
}

// String - renders the board as three rows separated by '/', with '.' for empty cells.
func (that Board) String() string {
	var sb strings.Builder
	for row := range Size {
		if row > 0 {
			sb.WriteByte('/')
		}
		for col := range Size {
			sb.WriteString(that[row][col].symbol())
		}
	}

	return sb.String()
}

// ParseBoard - reads 9 cells in row-major order. 'X' and 'O' are marks,
// '.', '-', '_' and ' ' are empty; '/', '|' and newlines are ignored.
func ParseBoard(s string) (Board, error) {
	var board Board

	n := 0
	for _, r := range s {
		var cell Cell

		switch r {
		case '/', '|', '\n', '\r':
			continue
		case 'X', 'x':
			cell = CellX
		case 'O', 'o':
			cell = CellO
		case '.', '-', '_', ' ':
			cell = Empty
		default:
			return Board{}, fmt.Errorf("%w: unexpected symbol %q", ErrInvalidBoard, r)
		}

		if n >= Size*Size {
			return Board{}, fmt.Errorf("%w: more than %d cells", ErrInvalidBoard, Size*Size)
		}

		board[n/Size][n%Size] = cell
		n++
	}

	if n != Size*Size {
		return Board{}, fmt.Errorf("%w: got %d cells, want %d", ErrInvalidBoard, n, Size*Size)
	}

	return board, nil
}

func (that Board) hasLine(cell Cell) bool {
	for _, line := range Lines {
		if that.At(line[0]) == cell && that.At(line[1]) == cell && that.At(line[2]) == cell {
			return true
		}
	}

	return false
}

func (that Board) counts() (int, int) {
	var countX, countO int
	for row := range Size {
		for col := range Size {
			switch that[row][col] {
			case CellX:
				countX++
			case CellO:
				countO++
			}
		}
	}

	return countX, countO
}
