package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const (
	actionConnect  = "connect"
	actionGameNew  = "game:new"
	actionGameJoin = "game:join"
	actionGameTurn = "game:turn"
	actionGameHint = "game:hint"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player *entity.Player    `json:"player,omitempty"`
	Game   *entity.Game      `json:"game,omitempty"`
	Cell   *tictactoe.Action `json:"cell,omitempty"`
	Hint   *tictactoe.Action `json:"hint,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (that *Server) sendMessage(c *client, action string, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = c.writeJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(c *client, action, errorMsg string) error {
	if err := that.sendMessage(c, action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

// maskGameDetails - copies the game without the seat list and the game type.
func maskGameDetails(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil
	masked.Type = ""

	return &masked
}
