package app

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/godilite/sla-dashboard/internal/config"
	"github.com/godilite/sla-dashboard/internal/repository"
	"github.com/godilite/sla-dashboard/internal/service"
	"github.com/godilite/sla-dashboard/internal/web"
	"github.com/godilite/sla-dashboard/internal/workbook"
	dbbuilder "github.com/godilite/sla-dashboard/pkg/database"
	"github.com/godilite/sla-dashboard/pkg/httpserver"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	httpServer *httpserver.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithMaxOpenConns(1),
		dbbuilder.WithMaxIdleConns(1),
		dbbuilder.WithConnMaxLifetime(0),
		dbbuilder.WithConnMaxIdleTime(0),
		dbbuilder.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	uploadRepo := repository.NewUploadRepository(dbPool)
	if err := uploadRepo.Migrate(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	var readOpts []workbook.Option
	if cfg.SheetName != "" {
		readOpts = append(readOpts, workbook.WithSheet(cfg.SheetName))
	}
	reportService := service.NewReportService(uploadRepo, logger, readOpts...)

	handlers := web.NewHandlers(reportService, logger, web.WithMaxTableRows(cfg.MaxTableRows))

	mode := gin.DebugMode
	if cfg.IsProduction() {
		mode = gin.ReleaseMode
	}
	httpServer, err := httpserver.New(
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithLogger(logger),
		httpserver.WithLogging(cfg.RequestLogging),
		httpserver.WithMode(mode),
		httpserver.WithMaxBodyBytes(cfg.MaxUploadBytes()),
	)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	httpServer.RegisterRoutes(handlers.Register)

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		httpServer: httpServer,
	}, nil
}

// Addr returns the dashboard's listening address.
func (a *App) Addr() net.Addr {
	return a.httpServer.Addr()
}

// Start serves the dashboard in the background.
func (a *App) Start() {
	a.logger.Info("application starting")
	a.httpServer.Start()
}

// Shutdown stops the HTTP server and releases the session store.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("application shutting down")

	err := a.httpServer.Shutdown(ctx)
	if err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if dbErr := a.dbPool.Close(); dbErr != nil {
		a.logger.Error("database shutdown error", zap.Error(dbErr))
	}
	return err
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			a.logger.Warn("shutdown completed but deadline exceeded")
		}
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}
