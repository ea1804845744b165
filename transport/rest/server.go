package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/popugame"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	CreateGame(ctx context.Context, identity, displayName string) (*entity.Session, error)
	JoinGame(ctx context.Context, code, identity, displayName string) (popugame.Player, *entity.Session, error)
	MakeMove(ctx context.Context, code, identity string, row, col int) (*entity.Session, error)
	ConcedeGame(ctx context.Context, code, identity string) (*entity.Session, error)
	GetState(ctx context.Context, code string) (*entity.Session, error)

	Subscribe(ctx context.Context, code string, sinceVersion int64) (<-chan *entity.Session, func(), error)

	SessionElos(ctx context.Context, session *entity.Session) (*int, *int)
}

type identityService interface {
	IssueGuestToken() (token, identity string, err error)
	ResolveIdentity(token string) (string, error)
}

type Server struct {
	logger *slog.Logger

	game     gameUseCase
	identity identityService
}

func New(logger *slog.Logger, game gameUseCase, identity identityService) *Server {
	return &Server{
		logger: logger,

		game:     game,
		identity: identity,
	}
}

// Start - starts the HTTP server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", that.handlePing)

	mux.HandleFunc("POST /api/popugame/create", that.handleCreate)
	mux.HandleFunc("POST /api/popugame/join", that.handleJoin)
	mux.HandleFunc("POST /api/popugame/move", that.handleMove)
	mux.HandleFunc("POST /api/popugame/concede", that.handleConcede)
	mux.HandleFunc("GET /api/popugame/state/{code}", that.handleState)
	mux.HandleFunc("GET /api/popugame/stream/{code}", that.handleStream)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
		// No WriteTimeout: the SSE stream endpoint holds its response open
		// for as long as the subscriber stays connected.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
