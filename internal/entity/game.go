package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"
)

const (
	PrivateType = "private"
	PublicType  = "public"
	WithBotType = "bot"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID      string          `json:"id"`
	Board   tictactoe.Board `json:"board"`
	Winner  string          `json:"winner"`
	Status  string          `json:"status"`
	Turn    string          `json:"player_turn"`
	Players []*Player       `json:"players,omitempty"`
	Type    string          `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:     id,
		Board:  tictactoe.InitialState(),
		Turn:   PlayerX,
		Status: StatusWaiting,
		Type:   gameType,
	}
}

// UpdateGameState - derives turn, winner and status from the board.
func (that *Game) UpdateGameState() {
	switch outcome := that.Board.Outcome(); outcome {
	// one player wins
	case tictactoe.WinX, tictactoe.WinO:
		winner, _ := that.Board.Winner()
		that.Winner = winner.String()
		that.Status = StatusFinished
		that.Turn = ""
	// tie
	case tictactoe.Draw:
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = ""
	// game continue
	default:
		that.Turn = that.Board.Player().String()
		that.Status = StatusOngoing
	}
}

func (that *Game) MakeTurn(playerMark string, action tictactoe.Action) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	board, err := that.Board.Result(action)
	if err != nil {
		return fmt.Errorf("failed to apply turn: %w", err)
	}

	that.Board = board
	that.UpdateGameState()

	return nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

func (that *Game) IsPrivate() bool {
	return that.Type == PrivateType
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

// GetPlayerByMark - returns the player holding the mark, or nil.
func (that *Game) GetPlayerByMark(mark string) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

func (that *Game) GetRandomMarks() (string, string) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}

// ValidGameType - reports whether the type is one the server can create.
func ValidGameType(gameType string) bool {
	switch gameType {
	case WithBotType, PrivateType, PublicType:
		return true
	default:
		return false
	}
}
