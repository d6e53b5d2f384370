package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
)

var errBadRequest = errors.New("bad request")

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type gameRequest struct {
	PlayerID string `json:"player_id"`
	Type     string `json:"type"`
}

type analysisRequest struct {
	Board tictactoe.Board `json:"board"`
}

type hintResponse struct {
	Action tictactoe.Action `json:"action"`
	Cell   int              `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	// the body is optional; chunked requests carry no length, so EOF is the only empty signal
	var req playerRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		that.writeError(w, r, err)
		return
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(r.Context(), req.PlayerID)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, player)
}

func (that *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, r, err)
		return
	}

	if req.Type == "" {
		req.Type = entity.WithBotType
	}

	game, err := that.gameUseCase.GetOrCreateGame(r.Context(), req.PlayerID, req.Type)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, r, err)
		return
	}

	game, err := that.gameUseCase.JoinGame(r.Context(), r.PathValue("id"), req.PlayerID)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleMakeTurn(w http.ResponseWriter, r *http.Request) {
	var action tictactoe.Action
	if err := decode(r, &action); err != nil {
		that.writeError(w, r, err)
		return
	}

	game, err := that.gameUseCase.MakeTurn(r.Context(), r.PathValue("id"), action)
	if err != nil && (game == nil || !usecase.IsGameOver(err)) {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	action, err := that.gameUseCase.Hint(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, hintResponse{Action: action, Cell: action.Index()})
}

func (that *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decode(r, &req); err != nil {
		that.writeError(w, r, err)
		return
	}

	analysis, err := that.gameUseCase.Analyze(req.Board)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, analysis)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		that.writeJSON(w, status, errorResponse{Error: "Internal Server Error"})
		return
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, tictactoe.ErrInvalidAction),
		errors.Is(err, tictactoe.ErrInvalidBoard),
		errors.Is(err, apperror.ErrUnknownGameType):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsFull),
		errors.Is(err, apperror.ErrGameAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
