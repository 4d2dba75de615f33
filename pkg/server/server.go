package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/getmockd/provider/pkg/config"
	"github.com/getmockd/provider/pkg/fixture"
	"github.com/getmockd/provider/pkg/httputil"
	"github.com/getmockd/provider/pkg/logging"
	"github.com/getmockd/provider/pkg/metrics"
	"github.com/getmockd/provider/pkg/provider"
	"github.com/getmockd/provider/pkg/states"
)

// Route paths served alongside provider.Path and the state change path.
const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
	OpenAPIPath = "/openapi.yaml"
)

// ShutdownTimeout bounds how long Stop waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// ReadHeaderTimeout bounds how long a client may take to send request
// headers. It never exceeds the configured read timeout.
const ReadHeaderTimeout = 10 * time.Second

// Server is a provider instance: one fixture store, its state hooks and the
// HTTP surface over them.
type Server struct {
	cfg        *config.Config
	host       string
	log        *slog.Logger
	clock      func() time.Time
	store      *fixture.Store
	dispatcher *states.Dispatcher
	metrics    *metrics.Provider
	handler    http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	running    bool
	startTime  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sets the time source used for valid_date in responses.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithHost binds the listener to host instead of all interfaces.
func WithHost(host string) Option {
	return func(s *Server) {
		s.host = host
	}
}

// New validates cfg and builds a server. Nothing listens until Start.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	initial, err := cfg.InitialState()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:   cfg,
		log:   logging.Nop(),
		clock: time.Now,
		store: fixture.NewStore(initial),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dispatcher = states.New(s.log)
	states.RegisterDefaults(s.dispatcher, s.store)
	s.metrics = metrics.NewProvider(func() float64 {
		return float64(s.store.Get().CountValue())
	})
	s.dispatcher.Observe(s.metrics.ObserveState)

	mux := http.NewServeMux()
	mux.Handle("GET "+provider.Path, provider.NewHandler(s.store,
		provider.WithClock(s.clock),
		provider.WithLocation(loc),
		provider.WithLogger(s.log),
	))
	mux.Handle("POST "+cfg.StateChangePath, states.StateChangeHandler(s.dispatcher, s.store.Reset))
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	mux.HandleFunc("GET "+OpenAPIPath, handleOpenAPI)
	mux.Handle("GET "+MetricsPath, s.metrics.Handler())

	s.handler = s.metrics.Middleware(logging.NewMiddleware(mux, s.log))
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the server's fixture store.
func (s *Server) Store() *fixture.Store {
	return s.store
}

// Dispatcher returns the server's provider state hooks.
func (s *Server) Dispatcher() *states.Dispatcher {
	return s.dispatcher
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *metrics.Provider {
	return s.metrics
}

// Start binds the listener and serves in the background. The address is
// known once Start returns, which matters when the configured port is 0.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeoutDuration(),
		ReadHeaderTimeout: s.readHeaderTimeout(),
		WriteTimeout:      s.cfg.WriteTimeoutDuration(),
	}

	srv := s.httpServer
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	s.log.Info("provider started",
		"addr", ln.Addr().String(),
		"variant", string(s.store.Kind()),
		"fixture", s.store.Get().String(),
	)
	return nil
}

func (s *Server) readHeaderTimeout() time.Duration {
	if rt := s.cfg.ReadTimeoutDuration(); rt > 0 && rt < ReadHeaderTimeout {
		return rt
	}
	return ReadHeaderTimeout
}

// Stop gracefully shuts down the server. It is a no-op when not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.running = false
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	s.log.Info("provider stopped", "uptime", time.Since(s.startTime).Round(time.Millisecond).String())
	return nil
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Variant string `json:"variant"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, HealthResponse{Status: "ok", Variant: string(s.store.Kind())})
}

func handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(provider.OpenAPISpec())
}
