package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
)

type BotService interface {
	MakeTurn(game *entity.Game) error
	Hint(game *entity.Game) (tictactoe.Action, error)
}

// botService plays the minimax move for the bot seated in a game.
type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

func (that *botService) MakeTurn(game *entity.Game) error {
	var botPlayer *entity.Player
	for _, player := range game.Players {
		if player.IsBot() {
			botPlayer = player
			break
		}
	}

	if botPlayer == nil {
		return ErrBotNotFound
	}

	action, err := that.Hint(game)
	if err != nil {
		return err
	}

	if err = game.MakeTurn(botPlayer.Mark, action); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}

// Hint - returns the optimal action for the mark to move.
func (that *botService) Hint(game *entity.Game) (tictactoe.Action, error) {
	action, ok := tictactoe.Minimax(game.Board)
	if !ok {
		return tictactoe.Action{}, ErrNoAvailableMoves
	}

	return action, nil
}
