package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"hanoi/internal/config"
)

// Server ties together HTTP serving and WebSocket handling.
type Server struct {
	handlers *Handlers
	cfg      config.Config
	static   fs.FS
	logger   *slog.Logger
}

// New creates a server. static must hold the front end under web/static.
func New(cfg config.Config, static fs.FS, logger *slog.Logger) *Server {
	return &Server{
		handlers: NewHandlers(cfg, logger),
		cfg:      cfg,
		static:   static,
		logger:   logger,
	}
}

func (s *Server) Handlers() *Handlers {
	return s.handlers
}

// Handler returns the routes of the server wrapped in request logging.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// Static files from embedded FS
	sub, err := fs.Sub(s.static, "web/static")
	if err != nil {
		return nil, fmt.Errorf("static fs: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(sub)))

	// API routes
	mux.HandleFunc("/api/create", s.handlers.HandleCreateRoom)
	mux.HandleFunc("/api/qr", s.handlers.HandleQR)
	mux.HandleFunc("/api/state", s.handlers.HandleState)
	mux.HandleFunc("/api/member-id", s.handlers.HandleMemberID)
	mux.HandleFunc("/ws", s.handlers.HandleWS)

	return requestLogger(s.logger, mux), nil
}

// Start serves until ctx is done, then shuts down the hubs and the listener.
func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("hanoi server starting", "addr", fmt.Sprintf("http://localhost%s", srv.Addr))
	s.logger.Info("open /api/create to create a new room", "url", fmt.Sprintf("http://localhost%s/api/create", srv.Addr))

	select {
	case err := <-errc:
		s.handlers.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.handlers.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
