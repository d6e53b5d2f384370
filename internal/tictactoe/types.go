package tictactoe

import (
	"encoding/json"
	"fmt"
)

// Cell is the content of a board square.
type Cell uint8

const (
	Empty Cell = iota
	CellX
	CellO
)

func (c Cell) Valid() bool {
	return c <= CellO
}

// Player returns the owner of a marked cell.
func (c Cell) Player() (Player, bool) {
	switch c {
	case CellX:
		return X, true
	case CellO:
		return O, true
	default:
		return 0, false
	}
}

// String returns "X", "O" or "" for an empty cell.
func (c Cell) String() string {
	if p, ok := c.Player(); ok {
		return p.String()
	}

	return ""
}

func (c Cell) symbol() string {
	if c == Empty {
		return "."
	}

	return c.String()
}

// Player identifies the side to move. The zero value is not a player.
type Player uint8

const (
	X Player = iota + 1
	O
)

func (p Player) Cell() Cell {
	switch p {
	case X:
		return CellX
	case O:
		return CellO
	default:
		return Empty
	}
}

func (p Player) Opponent() Player {
	if p == X {
		return O
	}

	return X
}

func (p Player) String() string {
	switch p {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// ParsePlayer accepts "X" or "O".
func ParsePlayer(s string) (Player, error) {
	switch s {
	case "X":
		return X, nil
	case "O":
		return O, nil
	default:
		return 0, fmt.Errorf("unknown player %q", s)
	}
}

// Action is a board coordinate.
type Action struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (a Action) Valid() bool {
	return a.Row >= 0 && a.Row < Size && a.Col >= 0 && a.Col < Size
}

// Index returns the row-major cell index in [0, 8].
func (a Action) Index() int {
	return a.Row*Size + a.Col
}

// ActionFromIndex converts a row-major cell index back to an action.
func ActionFromIndex(index int) (Action, error) {
	if index < 0 || index >= Size*Size {
		return Action{}, fmt.Errorf("%w: cell %d", ErrInvalidAction, index)
	}

	return Action{Row: index / Size, Col: index % Size}, nil
}

func (a Action) String() string {
	return fmt.Sprintf("(%d, %d)", a.Row, a.Col)
}

type Outcome uint8

const (
	InProgress Outcome = iota
	WinX
	WinO
	Draw
)

func (o Outcome) String() string {
	switch o {
	case WinX:
		return "win:X"
	case WinO:
		return "win:O"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

// MarshalJSON encodes the board as a flat row-major array of "X", "O" and "".
func (that Board) MarshalJSON() ([]byte, error) {
	var cells [Size * Size]string
	for row := range Size {
		for col := range Size {
			cells[row*Size+col] = that[row][col].String()
		}
	}

	return json.Marshal(cells)
}

func (that *Board) UnmarshalJSON(data []byte) error {
	// null leaves the board untouched, like encoding/json does for arrays
	if string(data) == "null" {
		return nil
	}

	var cells []string
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}

	if len(cells) != Size*Size {
		return fmt.Errorf("%w: got %d cells, want %d", ErrInvalidBoard, len(cells), Size*Size)
	}

	var board Board
	for i, value := range cells {
		switch value {
		case "":
		case "X":
			board[i/Size][i%Size] = CellX
		case "O":
			board[i/Size][i%Size] = CellO
		default:
			return fmt.Errorf("%w: unknown mark %q in cell %d", ErrInvalidBoard, value, i)
		}
	}

	*that = board

	return nil
}
