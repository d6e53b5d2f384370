package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

var (
	errSomeError      = errors.New("some error")
	errPlayerNotFound = errors.New("player not found")
)

type mockPlayerService struct {
	mock.Mock
}

func (that *mockPlayerService) CreatePlayer(ctx context.Context) (*entity.Player, error) {
	args := that.Called(ctx)

	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockPlayerService) GetPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)

	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameService struct {
	mock.Mock
}

func (that *mockGameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)

	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

type mockGamePlayService struct {
	mock.Mock
}

func (that *mockGamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	args := that.Called(ctx, player, gameType)

	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID, playerID)

	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlayService) CleanupGame(ctx context.Context, game *entity.Game) {
	that.Called(ctx, game)
}

func (that *mockGamePlayService) MakeTurn(ctx context.Context, playerID string, action tictactoe.Action) (*entity.Game, error) {
	args := that.Called(ctx, playerID, action)

	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGamePlayService) Hint(ctx context.Context, playerID string) (tictactoe.Action, error) {
	args := that.Called(ctx, playerID)

	action, _ := args.Get(0).(tictactoe.Action)
	return action, args.Error(1)
}

type mocks struct {
	players  *mockPlayerService
	games    *mockGameService
	gamePlay *mockGamePlayService
}

func newUseCase() (GameUseCase, *mocks) {
	m := &mocks{
		players:  &mockPlayerService{},
		games:    &mockGameService{},
		gamePlay: &mockGamePlayService{},
	}

	return NewGameUseCase(m.players, m.games, m.gamePlay), m
}

func TestGameUseCase_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when playerID is empty", func(t *testing.T) {
		// Given: a player service that creates players
		useCase, m := newUseCase()
		m.players.On("CreatePlayer", mock.Anything).Return(&entity.Player{ID: "new"}, nil).Once()

		// When: calling GetOrCreatePlayer with an empty playerID
		player, err := useCase.GetOrCreatePlayer(ctx, "")

		// Then: a new player is returned
		require.NoError(t, err)
		assert.Equal(t, "new", player.ID)
		m.players.AssertExpectations(t)
	})

	t.Run("Returns existing player when playerID is not empty", func(t *testing.T) {
		useCase, m := newUseCase()
		existing := &entity.Player{ID: "player123"}
		m.players.On("GetPlayerByID", mock.Anything, "player123").Return(existing, nil).Once()

		player, err := useCase.GetOrCreatePlayer(ctx, "player123")

		require.NoError(t, err)
		assert.Equal(t, existing, player)
	})

	t.Run("Returns error if the lookup fails", func(t *testing.T) {
		useCase, m := newUseCase()
		m.players.On("GetPlayerByID", mock.Anything, "playerErr").Return(nil, errPlayerNotFound).Once()

		player, err := useCase.GetOrCreatePlayer(ctx, "playerErr")

		require.ErrorIs(t, err, errPlayerNotFound)
		assert.Nil(t, player)
	})
}

func TestGameUseCase_GetOrCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Passes the player and type to the gameplay service", func(t *testing.T) {
		useCase, m := newUseCase()
		player := &entity.Player{ID: "p1"}
		game := entity.NewGame("g1", entity.WithBotType)

		m.players.On("GetPlayerByID", mock.Anything, "p1").Return(player, nil).Once()
		m.gamePlay.On("GetOrCreateGame", mock.Anything, player, entity.WithBotType).Return(game, nil).Once()

		got, err := useCase.GetOrCreateGame(ctx, "p1", entity.WithBotType)

		require.NoError(t, err)
		assert.Equal(t, game, got)
	})

	t.Run("Returns error when the player is unknown", func(t *testing.T) {
		useCase, m := newUseCase()
		m.players.On("GetPlayerByID", mock.Anything, "p1").Return(nil, errPlayerNotFound).Once()

		_, err := useCase.GetOrCreateGame(ctx, "p1", entity.WithBotType)

		assert.ErrorIs(t, err, errPlayerNotFound)
		m.gamePlay.AssertNotCalled(t, "GetOrCreateGame", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGameUseCase_MakeTurn(t *testing.T) {
	ctx := context.Background()
	action := tictactoe.Action{Row: 1, Col: 1}

	t.Run("Returns the game while it is ongoing", func(t *testing.T) {
		useCase, m := newUseCase()
		game := &entity.Game{ID: "g1", Status: entity.StatusOngoing}
		m.gamePlay.On("MakeTurn", mock.Anything, "p1", action).Return(game, nil).Once()

		got, err := useCase.MakeTurn(ctx, "p1", action)

		require.NoError(t, err)
		assert.Equal(t, game, got)
		m.gamePlay.AssertNotCalled(t, "CleanupGame", mock.Anything, mock.Anything)
	})

	t.Run("Cleans up a finished game", func(t *testing.T) {
		// Given: a turn that finishes the game
		useCase, m := newUseCase()
		game := &entity.Game{ID: "g1", Status: entity.StatusFinished, Winner: entity.PlayerX}
		m.gamePlay.On("MakeTurn", mock.Anything, "p1", action).Return(game, nil).Once()
		m.gamePlay.On("CleanupGame", mock.Anything, game).Return().Once()

		// When: making the turn
		got, err := useCase.MakeTurn(ctx, "p1", action)

		// Then: the final state comes back with ErrGameFinished and the game is cleaned up
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.True(t, IsGameOver(err))
		assert.Equal(t, game, got)
		m.gamePlay.AssertExpectations(t)
	})

	t.Run("Wraps gameplay errors", func(t *testing.T) {
		useCase, m := newUseCase()
		m.gamePlay.On("MakeTurn", mock.Anything, "p1", action).Return(nil, errSomeError).Once()

		got, err := useCase.MakeTurn(ctx, "p1", action)

		require.ErrorIs(t, err, errSomeError)
		assert.False(t, IsGameOver(err))
		assert.Nil(t, got)
	})
}

func TestGameUseCase_JoinAndGet(t *testing.T) {
	ctx := context.Background()
	useCase, m := newUseCase()
	game := entity.NewGame("g1", entity.PrivateType)

	m.gamePlay.On("JoinGameByID", mock.Anything, "g1", "p2").Return(game, nil).Once()
	m.games.On("GetGameByID", mock.Anything, "g1").Return(game, nil).Once()

	joined, err := useCase.JoinGame(ctx, "g1", "p2")
	require.NoError(t, err)
	assert.Equal(t, game, joined)

	got, err := useCase.GetGame(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, game, got)
}

func TestGameUseCase_Hint(t *testing.T) {
	useCase, m := newUseCase()
	m.gamePlay.On("Hint", mock.Anything, "p1").Return(tictactoe.Action{Row: 2, Col: 0}, nil).Once()

	action, err := useCase.Hint(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, tictactoe.Action{Row: 2, Col: 0}, action)
}

func TestGameUseCase_Analyze(t *testing.T) {
	t.Run("Analyzes a valid board", func(t *testing.T) {
		useCase, _ := newUseCase()
		board, err := tictactoe.ParseBoard("XX./OO./...")
		require.NoError(t, err)

		analysis, err := useCase.Analyze(board)

		require.NoError(t, err)
		require.NotNil(t, analysis.Best)
		assert.Equal(t, tictactoe.Action{Row: 0, Col: 2}, *analysis.Best)
		assert.Equal(t, entity.PlayerX, analysis.Player)
	})

	t.Run("Rejects impossible boards", func(t *testing.T) {
		useCase, _ := newUseCase()
		board, err := tictactoe.ParseBoard("OOO/.../...")
		require.NoError(t, err)

		_, err = useCase.Analyze(board)

		assert.ErrorIs(t, err, tictactoe.ErrInvalidBoard)
	})
}
