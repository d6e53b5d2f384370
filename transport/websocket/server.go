package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const (
	shutdownTimeout = 5 * time.Second
	writeTimeout    = 10 * time.Second
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, action tictactoe.Action) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (tictactoe.Action, error)
}

type handlerFunc func(ctx context.Context, client *client, msg *Message) error

// client serializes writes to one connection; gorilla allows a single concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (that *client) writeJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	return that.conn.WriteJSON(v)
}

// close - sends a going-away frame and drops the connection. Safe to call next to writeJSON.
func (that *client) close() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = that.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = that.conn.Close()
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*client

	// clients holds every upgraded connection, registered to a player or not.
	clientsMutex sync.Mutex
	clients      map[*client]struct{}
	closing      bool
	active       sync.WaitGroup
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*client),
		clients:     make(map[*client]struct{}),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameJoin] = server.handleJoinGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameHint] = server.handleGameHint

	return server
}

// Handler - returns the /ws route.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server. It returns once ctx is canceled and every connection is closed.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	// Shutdown does not touch hijacked connections.
	srv.RegisterOnShutdown(that.closeConnections)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-shutdownDone
	that.active.Wait()

	return nil
}

// closeConnections - closes every open connection and refuses new ones.
func (that *Server) closeConnections() {
	that.clientsMutex.Lock()
	that.closing = true
	clients := make([]*client, 0, len(that.clients))
	for c := range that.clients {
		clients = append(clients, c)
	}
	that.clientsMutex.Unlock()

	for _, c := range clients {
		c.close()
	}

	that.logger.Info("closed WebSocket connections", "count", len(clients))
}

func (that *Server) track(c *client) bool {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	if that.closing {
		return false
	}

	that.clients[c] = struct{}{}
	return true
}

func (that *Server) untrack(c *client) {
	that.clientsMutex.Lock()
	delete(that.clients, c)
	that.clientsMutex.Unlock()
}

func (that *Server) serveWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWebSocket")

	// counted before the hijack, while http.Server still tracks the request
	that.active.Add(1)
	defer that.active.Done()

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn}
	if !that.track(c) {
		c.close()
		return
	}

	defer func() {
		that.untrack(c)
		that.handleDisconnect(c)
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	that.handleMessages(ctx, c)
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if isDecodeError(err) {
				if sendErr := that.sendErrorResponse(c, "", "malformed message"); sendErr != nil {
					return
				}
				continue
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err := that.sendErrorResponse(c, message.Action, "unknown action"); err != nil {
				return
			}
			continue
		}

		if err := handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// isDecodeError - reports a malformed message body; the connection itself is still usable.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (that *Server) register(playerID string, c *client) {
	that.connectionsMutex.Lock()
	that.connections[playerID] = c
	that.connectionsMutex.Unlock()
}

func (that *Server) connection(playerID string) (*client, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	c, ok := that.connections[playerID]
	return c, ok
}

func (that *Server) handleDisconnect(c *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, conn := range that.connections {
		if conn == c {
			delete(that.connections, playerID)
			that.logger.Info("player disconnected", "playerID", playerID)
		}
	}
}
