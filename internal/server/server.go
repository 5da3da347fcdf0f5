// ABOUTME: Main server implementation for the tone service
// ABOUTME: Manages HTTP routes, WebSocket clients, mDNS advertisement and shutdown
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Resonate-Protocol/tonetable/internal/discovery"
	"github.com/Resonate-Protocol/tonetable/pkg/audio"
)

// Defaults applied by New
const (
	DefaultPort         = 8927
	DefaultToneDuration = time.Second
	MaxToneDuration     = 10 * time.Second
)

// Config holds server configuration
type Config struct {
	Port           int
	Name           string
	EnableMDNS     bool
	UseTUI         bool
	AllowedOrigins []string
	SampleRate     int     // rate tones are generated at
	Amplitude      float64 // peak level of generated tones
	ToneDuration   time.Duration
	MaxDuration    time.Duration
}

// Server represents the tone server
type Server struct {
	config   Config
	serverID string

	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server

	// Client management
	clients   map[string]*Client
	clientsMu sync.RWMutex

	mdnsManager *discovery.Manager

	tui       *ServerTUI
	startTime time.Time
	served    int64
	lastTone  string
	statsMu   sync.Mutex

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// New creates a new server instance
func New(config Config) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = "tonetable"
	}
	if config.SampleRate <= 0 {
		config.SampleRate = audio.DefaultSampleRate
	}
	if config.Amplitude <= 0 {
		config.Amplitude = audio.DefaultAmplitude
	}
	if config.ToneDuration <= 0 {
		config.ToneDuration = DefaultToneDuration
	}
	if config.MaxDuration <= 0 {
		config.MaxDuration = MaxToneDuration
	}

	s := &Server{
		config:    config,
		serverID:  uuid.New().String(),
		clients:   make(map[string]*Client),
		startTime: time.Now(),
		stopChan:  make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.routes()
	return s
}

// routes builds the HTTP handler tree
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/notes", s.handleNotes)
		r.Get("/frequency", s.handleFrequency)
		r.Get("/verify", s.handleVerify)
	})
	r.Get(discovery.DefaultPath, s.handleWebSocket)
	return r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ID returns the server identifier sent in server/hello
func (s *Server) ID() string {
	return s.serverID
}

// checkOrigin admits non-browser clients and configured origins
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	log.Warn().Str("origin", origin).Msg("rejecting WebSocket origin")
	return false
}

// Start runs the server until Stop is called, the TUI quits or ctx ends
func (s *Server) Start(ctx context.Context) error {
	if s.config.UseTUI {
		s.tui = NewServerTUI()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.tui.Start(s.config.Name, s.config.Port); err != nil {
				log.Error().Err(err).Msg("server TUI failed")
			}
		}()
	}

	log.Info().Str("name", s.config.Name).Str("id", s.serverID).Msg("server starting")

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Warn().Err(err).Msg("failed to start mDNS advertisement")
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	log.Info().Str("addr", addr).Msg("listening")

	var tuiQuitChan <-chan struct{}
	if s.tui != nil {
		tuiQuitChan = s.tui.QuitChan()
	}

	var serverErr error
	select {
	case <-s.stopChan:
		log.Info().Msg("server shutting down")
	case <-ctx.Done():
		log.Info().Msg("context cancelled, shutting down")
	case <-tuiQuitChan:
		log.Info().Msg("TUI quit requested, shutting down")
	case err := <-errChan:
		log.Error().Err(err).Msg("HTTP server error")
		serverErr = err
	}

	// Reject new connections from here on
	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.tui != nil {
		s.tui.Stop()
	}
	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown error")
	}
	s.closeClients()

	s.wg.Wait()
	log.Info().Msg("server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// closeClients drops every WebSocket connection; hijacked conns survive http.Server.Shutdown
func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.Conn.Close()
	}
}

// shuttingDown reports whether Start has begun teardown
func (s *Server) shuttingDown() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.isShutdown
}

// recordTone updates served-tone stats
func (s *Server) recordTone(name string) {
	s.statsMu.Lock()
	s.served++
	s.lastTone = name
	s.statsMu.Unlock()
	s.updateTUI()
}

// Served returns the number of tones streamed so far
func (s *Server) Served() int64 {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.served
}
