package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const (
	gameKeyPrefix = "game:"

	// waitingPublicKey lists public game ids in the order they started waiting.
	waitingPublicKey = "public:waiting"
)

var ErrGameNotFound = errors.New("game not found")

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	PushWaitingPublicGame(ctx context.Context, id string) error
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository - stores games as JSON. A zero ttl keeps them forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKeyPrefix+game.ID, gameJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	if deleted == 0 {
		return ErrGameNotFound
	}

	return nil
}

// PushWaitingPublicGame - queues a public game for the next player looking for an opponent.
func (that *dbGame) PushWaitingPublicGame(ctx context.Context, id string) error {
	pipe := that.client.TxPipeline()
	pipe.RPush(ctx, waitingPublicKey, id)
	if that.ttl > 0 {
		pipe.Expire(ctx, waitingPublicKey, that.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to queue public game: %w", err)
	}

	return nil
}

// GetWaitingPublicGame - pops the oldest public game that still has a free seat.
// Each id is handed out once, so two players never claim the same seat.
// Expired, started and full games are dropped from the queue.
func (that *dbGame) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	for {
		id, err := that.client.LPop(ctx, waitingPublicKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil, ErrGameNotFound
		}

		if err != nil {
			return nil, fmt.Errorf("failed to pop public game: %w", err)
		}

		game, err := that.GetByID(ctx, id)
		if errors.Is(err, ErrGameNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if game.IsWaiting() && len(game.Players) < 2 {
			return game, nil
		}
	}
}
