// Package server wires the slotswap server together: storage, the swap
// engine, the optional receipt archive and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/slotswap/internal/logging"
	"github.com/dmitrijs2005/slotswap/internal/server/config"
	"github.com/dmitrijs2005/slotswap/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slotswap/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/slotswap/internal/server/grpc"
)

// serveFunc runs the transport until ctx is done.
type serveFunc func(ctx context.Context) error

type App struct {
	config      *config.Config
	logger      logging.Logger
	closeLogger func() error
	db          *sql.DB
	swaps       *services.SwapService
	archiver    *services.ReceiptArchiver
	serve       serveFunc
}

// newLogger and openDB are replaced in tests.
var (
	newLogger = logging.New
	openDB    = repomanager.Open
)

func NewApp(ctx context.Context, c *config.Config) (_ *App, err error) {
	logger, closeLogger, err := newLogger(logging.Options{
		Backend:     c.LogBackend,
		Level:       c.LogLevel,
		Environment: c.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	defer func() {
		if err != nil {
			logger.Error(ctx, "startup failed", "error", err)
			_ = closeLogger()
		}
	}()

	db, rm, err := openDB(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, closeLogger: closeLogger, db: db}

	var sink services.ReceiptSink
	if c.ArchiveEnabled() {
		app.archiver, err = services.NewReceiptArchiver(ctx, c, logger)
		if err != nil {
			return nil, fmt.Errorf("receipt archive init error: %w", err)
		}
		sink = app.archiver
	}

	app.swaps = services.NewSwapService(db, rm, c, logger, sink)
	slots := services.NewSlotService(db, rm, c, logger)

	app.serve = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, app.swaps, slots, c.SecretKey).Run

	return app, nil
}

// checkConsistency audits storage once at startup. Violations are logged by
// the engine and do not stop the server.
func (app *App) checkConsistency(ctx context.Context) {
	violations, err := app.swaps.CheckConsistency(ctx)
	if err != nil {
		app.logger.Warn(ctx, "consistency check failed", "error", err)
		return
	}
	if len(violations) > 0 {
		app.logger.Warn(ctx, "storage holds inconsistent state", "violations", len(violations))
	}
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until the transport fails, then
// waits for the receipt archive to drain and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver, "address", app.config.EndpointAddrGRPC)
	app.checkConsistency(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.serve(gctx)
	})
	if app.archiver != nil {
		g.Go(func() error {
			return app.archiver.Run(gctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	app.logger.Info(context.Background(), "Shutting down")
	if cerr := app.db.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close db: %w", cerr))
	}
	if cerr := app.closeLogger(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}
