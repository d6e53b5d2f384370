package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
)

func (that *Server) handleConnect(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "Player is required")
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendErrorResponse(c, msg.Action, errorMessage(err))
	}

	that.register(player.ID, c)

	payloadResp := Payload{Player: player}

	if player.GameID != "" {
		game, err := that.gameUseCase.GetGame(ctx, player.GameID)
		if err != nil {
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
			return that.sendErrorResponse(c, msg.Action, "failed to get the game")
		}

		payloadResp.Game = maskGameDetails(game)
	}

	if err = that.sendMessage(c, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "Player is required")
	}

	gameType := entity.WithBotType
	if payloadReq.Game != nil && payloadReq.Game.Type != "" {
		gameType = payloadReq.Game.Type
	}

	game, err := that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID, gameType)
	if err != nil {
		log.Error("failed to create or get game", "error", err)
		return that.sendErrorResponse(c, msg.Action, errorMessage(err))
	}

	that.register(payloadReq.Player.ID, c)
	that.broadcast(msg.Action, game)

	log.Info("Player is in game", "playerID", payloadReq.Player.ID, "gameID", game.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleJoinGame")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "Player is required")
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		log.Error("Game is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "Game is required")
	}

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to join game", "error", err)
		return that.sendErrorResponse(c, msg.Action, errorMessage(err))
	}

	that.register(payloadReq.Player.ID, c)
	that.broadcast(msg.Action, game)

	log.Info("Player joined game", "gameID", game.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "Player is required")
	}

	if payloadReq.Cell == nil {
		log.Error("Cell is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "Cell is required")
	}

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Cell)
	if err != nil && (game == nil || !usecase.IsGameOver(err)) {
		log.Error("failed to make turn", "error", err)
		return that.sendErrorResponse(c, msg.Action, errorMessage(err))
	}

	that.register(payloadReq.Player.ID, c)
	that.broadcast(msg.Action, game)

	if game.IsFinished() {
		log.Info("Game finished", "gameID", game.ID, "winner", game.Winner)
		return nil
	}

	log.Info("Player made a turn", "gameID", game.ID)

	return nil
}

func (that *Server) handleGameHint(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleGameHint")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(c, msg.Action, "Player is required")
	}

	action, err := that.gameUseCase.Hint(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to get hint", "playerID", payloadReq.Player.ID, "error", err)
		return that.sendErrorResponse(c, msg.Action, errorMessage(err))
	}

	that.register(payloadReq.Player.ID, c)

	return that.sendMessage(c, msg.Action, Payload{Player: payloadReq.Player, Hint: &action})
}

// broadcast - sends the game to every connected human seated in it.
func (that *Server) broadcast(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.connection(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			Game:   maskGameDetails(game),
		}

		if err := that.sendMessage(conn, action, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

// errorMessage - keeps client-facing errors short and hides internal failures.
func errorMessage(err error) string {
	known := []error{
		tictactoe.ErrInvalidAction,
		apperror.ErrNotYourTurn,
		apperror.ErrGameIsNotStarted,
		apperror.ErrGameFinished,
		apperror.ErrGameIsFull,
		apperror.ErrGameAlreadyExists,
		apperror.ErrUnknownGameType,
		repository.ErrGameNotFound,
		repository.ErrPlayerNotFound,
	}

	for _, target := range known {
		if errors.Is(err, target) {
			return target.Error()
		}
	}

	return "internal error"
}
