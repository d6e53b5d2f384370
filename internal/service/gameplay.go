package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

type GamePlayService interface {
	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, player *entity.Player) (*entity.Game, error)
	CleanupGame(ctx context.Context, game *entity.Game)

	MakeTurn(ctx context.Context, playerID string, action tictactoe.Action) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (tictactoe.Action, error)
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	botService    BotService
}

func NewGamePlayService(logger *slog.Logger, playerService PlayerService, gameService GameService, botService BotService) GamePlayService {
	return &gamePlayService{
		logger:        logger.With("component", "gameplay"),
		playerService: playerService,
		gameService:   gameService,
		botService:    botService,
	}
}

func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, action tictactoe.Action) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "playerID", playerID)

	player, game, err := that.playerGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = game.MakeTurn(player.Mark, action); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	log.Debug("turn applied", "gameID", game.ID, "action", action.String())

	if game.IsWithBot() && !game.IsFinished() {
		if err = that.botService.MakeTurn(game); err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}

		log.Debug("bot answered", "gameID", game.ID, "board", game.Board.String())
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// Hint - returns the optimal action for the player, who must be on turn.
func (that *gamePlayService) Hint(ctx context.Context, playerID string) (tictactoe.Action, error) {
	player, game, err := that.playerGame(ctx, playerID)
	if err != nil {
		return tictactoe.Action{}, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return tictactoe.Action{}, err
	}

	if game.Turn != player.Mark {
		return tictactoe.Action{}, apperror.ErrNotYourTurn
	}

	action, err := that.botService.Hint(game)
	if err != nil {
		return tictactoe.Action{}, fmt.Errorf("failed to compute hint: %w", err)
	}

	return action, nil
}

func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if player.GameID != "" {
		return nil, fmt.Errorf("%w: player is in game %s", apperror.ErrGameAlreadyExists, player.GameID)
	}

	if !game.IsPrivate() || len(game.Players) >= 2 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, gameID)
	}

	if err = that.seatGuest(ctx, game, player); err != nil {
		return nil, err
	}

	that.logger.Info("player joined game", "gameID", game.ID, "playerID", player.ID)

	return game, nil
}

// JoinWaitingPublicGame - seats the player as O in the oldest waiting public game.
// It returns nil when nobody is waiting.
func (that *gamePlayService) JoinWaitingPublicGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	game, err := that.gameService.GetWaitingPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	if game == nil {
		return nil, nil //nolint: nilnil // nobody is waiting
	}

	if err = that.seatGuest(ctx, game, player); err != nil {
		return nil, err
	}

	that.logger.Info("player matched to public game", "gameID", game.ID, "playerID", player.ID)

	return game, nil
}

// seatGuest - gives the second seat to the player and starts the game.
func (that *gamePlayService) seatGuest(ctx context.Context, game *entity.Game, player *entity.Player) error {
	player.GameID = game.ID
	player.Mark = entity.PlayerO
	if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	game.Status = entity.StatusOngoing
	game.Players = append(game.Players, player)
	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	if player.GameID == "" && gameType == entity.PublicType {
		game, err := that.JoinWaitingPublicGame(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("failed to join public game: %w", err)
		}

		if game != nil {
			return game, nil
		}
	}

	if player.GameID == "" {
		game, err := that.createGame(ctx, player, gameType)
		if err != nil {
			return nil, fmt.Errorf("failed to create new game: %w", err)
		}

		return game, nil
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) createGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	game, updatedPlayer, err := that.gameService.CreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.UpdatePlayer(ctx, updatedPlayer); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if game.IsWithBot() {
		if err = that.addBotToGame(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	if game.IsPublic() {
		if err = that.gameService.QueuePublicGame(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to queue public game: %w", err)
		}
	}

	that.logger.Info("game created", "gameID", game.ID, "type", game.Type)

	return game, nil
}

func (that *gamePlayService) addBotToGame(ctx context.Context, game *entity.Game) error {
	playerMark, botMark := game.GetRandomMarks()

	for _, player := range game.Players {
		player.Mark = playerMark
		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			return fmt.Errorf("failed to update player: %w", err)
		}
	}

	game.Players = append(game.Players, entity.NewBotPlayer(game.ID, botMark))
	game.Status = entity.StatusOngoing

	if botMark == entity.PlayerX {
		if err := that.botService.MakeTurn(game); err != nil {
			return fmt.Errorf("bot failed to make first turn: %w", err)
		}
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game with bot: %w", err)
	}

	return nil
}

// CleanupGame - deletes a finished game and frees its players. Errors are logged only.
func (that *gamePlayService) CleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "CleanupGame", "gameID", game.ID)

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		freed := &entity.Player{ID: player.ID}
		if err := that.playerService.UpdatePlayer(ctx, freed); err != nil {
			log.Error("failed to update", "player", player.ID, "error", err)
		}
	}

	log.Info("game cleaned up", "winner", game.Winner)
}

func (that *gamePlayService) playerGame(ctx context.Context, playerID string) (*entity.Player, *entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, nil, apperror.ErrGameIsNotStarted
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return player, game, nil
}
