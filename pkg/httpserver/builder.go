package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	port              int
	logger            *zap.Logger
	mode              string
	middleware        []gin.HandlerFunc
	enableLogging     bool
	readHeaderTimeout time.Duration
	maxBodyBytes      int64
}

// WithPort sets the listening port. Port 0 picks a free one.
func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithMode sets the gin mode (debug, release or test).
func WithMode(mode string) Option {
	return func(o *Options) {
		o.mode = mode
	}
}

func WithMiddleware(middleware ...gin.HandlerFunc) Option {
	return func(o *Options) {
		o.middleware = append(o.middleware, middleware...)
	}
}

func WithLogging(enabled bool) Option {
	return func(o *Options) {
		o.enableLogging = enabled
	}
}

func WithReadHeaderTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.readHeaderTimeout = d
	}
}

// WithMaxBodyBytes caps request bodies; larger bodies fail when read.
func WithMaxBodyBytes(n int64) Option {
	return func(o *Options) {
		o.maxBodyBytes = n
	}
}

type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	lis        net.Listener
	logger     *zap.Logger
	serving    atomic.Bool
}

// New creates a new HTTP server using the builder options.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:              8080,
		logger:            zap.NewNop(),
		readHeaderTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.port < 0 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", options.port)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", options.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if options.mode != "" {
		gin.SetMode(options.mode)
	}

	engine := gin.New()
	engine.Use(RecoveryMiddleware(logger))
	if options.maxBodyBytes > 0 {
		engine.Use(BodyLimitMiddleware(options.maxBodyBytes))
	}
	if options.enableLogging {
		engine.Use(LoggingMiddleware(logger))
	}
	engine.Use(options.middleware...)

	s := &Server{
		engine: engine,
		httpServer: &http.Server{
			Handler:           engine,
			ReadHeaderTimeout: options.readHeaderTimeout,
		},
		lis:    lis,
		logger: logger.Named("http-server"),
	}
	s.serving.Store(true)

	engine.GET("/healthz", s.health)

	return s, nil
}

// RegisterRoutes allows the main application to register its handlers.
func (s *Server) RegisterRoutes(registerFunc func(r gin.IRouter)) {
	registerFunc(s.engine)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	if !s.serving.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_SERVING"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SERVING"})
}

// Start runs the server in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("HTTP server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(s.lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()

	s.logger.Info("HTTP server started", zap.String("addr", s.lis.Addr().String()))
}

// Shutdown gracefully shuts down the server with a timeout context.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	s.serving.Store(false)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("forced shutdown due to timeout", zap.Error(err))
		_ = s.httpServer.Close()
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
