package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/anchal00/blackjack/internal/db"
	"github.com/anchal00/blackjack/internal/game"
	"github.com/anchal00/blackjack/internal/identity"
	"github.com/anchal00/blackjack/internal/logger"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const HTTP_API_PREFIX = "/api"

// GameService is the command surface the HTTP and websocket handlers drive.
type GameService interface {
	Me(participantID string) (*db.Account, error)
	ListTables() ([]game.TableListing, error)
	CreateTable(participantID, name string, startChips int64, password string) (*db.Table, error)
	JoinTable(tableID int64, participantID, password string) (*db.Seat, error)
	LeaveTable(tableID int64, participantID string) error
	StartGame(tableID int64, participantID string) error
	EndGame(tableID int64, participantID string) error
	PlaceBet(tableID int64, participantID string, amount int64) error
	Hit(tableID int64, participantID string) (game.HitResult, error)
	Stand(tableID int64, participantID string) error
	Vote(tableID int64, participantID string, vote game.Vote) error
	Connected(participantID string)
	Disconnect(participantID string)
}

type Authenticator interface {
	Resolve(request *http.Request) (identity.Identity, error)
	Tokens() *identity.Tokens
}

type ServerOptions struct {
	Port      string
	StaticDir string
}

type GameServer struct {
	Service     GameService
	Auth        Authenticator
	Logger      logger.Logger
	ConnStore   ConnectionStore
	Router      *mux.Router
	port        string
	staticDir   string
	wssUpgrader websocket.Upgrader
	httpServer  *http.Server
	closers     []func()
}

type identityKey struct{}

func participantOf(request *http.Request) identity.Identity {
	id, _ := request.Context().Value(identityKey{}).(identity.Identity)
	return id
}

// authenticate resolves the caller's identity before any /api handler runs.
func (s *GameServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		id, err := s.Auth.Resolve(request)
		if err != nil {
			status := http.StatusForbidden
			if errors.Is(err, identity.ErrMissingCredentials) {
				status = http.StatusUnauthorized
			}
			s.sendJSON(writer, status, map[string]any{"ok": false, "kind": "authentication", "error": err.Error()})
			return
		}
		next.ServeHTTP(writer, request.WithContext(context.WithValue(request.Context(), identityKey{}, id)))
	})
}

func (s *GameServer) ReadRequestBody(request *http.Request) ([]byte, error) {
	bytesRead, err := io.ReadAll(request.Body)
	if err != nil {
		s.Logger.Error("Failed to read request body", err)
		return nil, err
	}
	return bytesRead, nil
}

func (s *GameServer) sendJSON(writer http.ResponseWriter, status int, body any) {
	responseBody, err := json.Marshal(body)
	if err != nil {
		s.Logger.Error("Failed to encode response body", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if _, err := writer.Write(responseBody); err != nil {
		s.Logger.Info("Failed to write response body")
	}
}

func (s *GameServer) sendOK(writer http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	s.sendJSON(writer, status, body)
}

func statusOf(kind game.ErrorKind) int {
	switch kind {
	case game.KindValidation, game.KindPhase, game.KindTurn, game.KindCapacity:
		return http.StatusBadRequest
	case game.KindAuthorization:
		return http.StatusForbidden
	case game.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *GameServer) sendError(writer http.ResponseWriter, err error) {
	kind := game.KindOf(err)
	msg := err.Error()
	if kind == game.KindInternal {
		s.Logger.Error("Request failed", err)
		msg = "internal error"
	}
	s.sendJSON(writer, statusOf(kind), map[string]any{"ok": false, "kind": kind, "error": msg})
}

func (s *GameServer) badRequest(writer http.ResponseWriter, err error) {
	s.sendJSON(writer, http.StatusBadRequest, map[string]any{"ok": false, "kind": game.KindValidation, "error": err.Error()})
}

func tableIDOf(request *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(request)["tableId"], 10, 64)
	return id
}

func (s *GameServer) Run() {
	sigtermHandler := make(chan os.Signal, 1)
	signal.Notify(sigtermHandler, os.Interrupt, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		<-sigtermHandler
		s.Shutdown()
		close(stopped)
	}()
	s.Logger.Info(fmt.Sprintf("Starting server on port %s", s.port))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return
	}
	s.Logger.Error(fmt.Sprintf("Failed to start server on port %s", s.port), err)
}

func (s *GameServer) Shutdown() {
	s.Logger.Info("Shutting down server....")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Logger.Error("Failed to shut down http server", err)
	}
	for _, closeFn := range s.closers {
		closeFn()
	}
	s.Logger.Info("Goodbye !")
}

// OnShutdown registers fn to run after the http server stops, e.g. closing storage.
func (s *GameServer) OnShutdown(fn func()) {
	s.closers = append(s.closers, fn)
}

// spaHandler serves the static client, falling back to index.html for client side routes.
func (s *GameServer) spaHandler(writer http.ResponseWriter, request *http.Request) {
	path := filepath.Join(s.staticDir, filepath.Clean("/"+request.URL.Path))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(writer, request, path)
		return
	}
	http.ServeFile(writer, request, filepath.Join(s.staticDir, "index.html"))
}

func NewGameServer(service GameService, auth Authenticator, connStore ConnectionStore, opts ServerOptions, log logger.Logger) *GameServer {
	router := mux.NewRouter()
	gs := &GameServer{
		Service:   service,
		Auth:      auth,
		Logger:    log,
		ConnStore: connStore,
		Router:    router,
		port:      opts.Port,
		staticDir: opts.StaticDir,
		wssUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	api := router.PathPrefix(HTTP_API_PREFIX).Subrouter()
	api.Use(gs.authenticate)
	api.HandleFunc("/me", gs.Me).Methods("GET")
	api.HandleFunc("/session", gs.IssueSession).Methods("POST")
	api.HandleFunc("/tables", gs.ListTables).Methods("GET")
	api.HandleFunc("/tables", gs.CreateTable).Methods("POST")
	api.HandleFunc("/tables/{tableId:[0-9]+}/join", gs.JoinTable).Methods("POST")
	api.HandleFunc("/tables/{tableId:[0-9]+}/leave", gs.LeaveTable).Methods("POST")
	api.HandleFunc("/tables/{tableId:[0-9]+}/start", gs.StartGame).Methods("POST")
	api.HandleFunc("/tables/{tableId:[0-9]+}/end", gs.EndGame).Methods("POST")
	api.HandleFunc("/tables/{tableId:[0-9]+}/bet", gs.PlaceBet).Methods("POST")
	api.HandleFunc("/tables/{tableId:[0-9]+}/hit", gs.Hit).Methods("POST")
	api.HandleFunc("/tables/{tableId:[0-9]+}/stand", gs.Stand).Methods("POST")
	api.HandleFunc("/tables/{tableId:[0-9]+}/continue", gs.Vote).Methods("POST")
	api.PathPrefix("/").HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gs.sendJSON(writer, http.StatusNotFound, map[string]any{"ok": false, "kind": game.KindNotFound, "error": "unknown endpoint"})
	})
	router.HandleFunc("/ws", gs.HandleWebsocket)
	if len(opts.StaticDir) != 0 {
		router.PathPrefix("/").HandlerFunc(gs.spaHandler).Methods("GET")
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", identity.InitDataHeader,
			identity.DevUserIDHeader, identity.DevNameHeader, identity.DevUsernameHeader}),
	)
	gs.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", opts.Port),
		Handler:           cors(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return gs
}

// Handler is the full middleware stack, as served by Run.
func (s *GameServer) Handler() http.Handler {
	return s.httpServer.Handler
}
