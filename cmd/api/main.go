// @title        splitsmart API
// @version      1.0
// @description  Shared expenses split into shares and netted into a minimal set of transfers.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"

	"github.com/fkhayef/splitsmart/docs"
	"github.com/fkhayef/splitsmart/internal/config"
	"github.com/fkhayef/splitsmart/internal/database"
	"github.com/fkhayef/splitsmart/internal/expense"
	expensesplit "github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/metrics"
	"github.com/fkhayef/splitsmart/internal/notification"
	"github.com/fkhayef/splitsmart/internal/settlement"
	"github.com/fkhayef/splitsmart/internal/snapshot"
	"github.com/fkhayef/splitsmart/internal/user"
	"github.com/fkhayef/splitsmart/pkg/logging"
	mw "github.com/fkhayef/splitsmart/pkg/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", logging.Err(err))
		os.Exit(1)
	}
}

func run() error {
	// Load .env file
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)
	if envErr != nil {
		logger.Debug("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	loadMode, err := snapshot.ParseMode(cfg.SnapshotLoadMode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database", "driver", cfg.DatabaseDriver)

	m := metrics.New()

	var publisher notification.Publisher = notification.NewLogPublisher(logger)
	if cfg.AMQPURL != "" {
		amqpPublisher, err := notification.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		publisher = amqpPublisher
	}
	defer publisher.Close()
	notifier := notification.NewService(publisher, logger, cfg.CurrencySymbol)

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewSplitStrategyFactory()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, logger)
	userHandler := user.NewHandler(userService)

	// Group feature, owner of the per-group ledger lock
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(db, groupRepo, userRepo, group.NewLocks(), m, logger, cfg.CurrencySymbol)
	groupHandler := group.NewHandler(groupService)

	// Expense feature (with split factory injected)
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, groupService, splitFactory, notifier, m, logger)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementService := settlement.NewService(groupService, notifier, m, logger)
	settlementHandler := settlement.NewHandler(settlementService, cfg.CurrencySymbol)

	// Save / load
	snapshotService := snapshot.NewService(snapshot.Deps{
		DB:          db,
		Users:       userService,
		UserRepo:    userRepo,
		Groups:      groupService,
		GroupRepo:   groupRepo,
		Expenses:    expenseService,
		ExpenseRepo: expenseRepo,
		Notifier:    notifier,
		Metrics:     m,
		Logger:      logger,
	})
	snapshotHandler := snapshot.NewHandler(snapshotService, loadMode)

	if cfg.SnapshotFile != "" {
		if err := loadSnapshotFile(ctx, snapshotService, cfg.SnapshotFile, loadMode, logger); err != nil {
			return err
		}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route(docs.SwaggerInfo.BasePath, func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
		r.Mount("/snapshot", snapshotHandler.Routes())
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadSnapshotFile imports a snapshot document on first start.
func loadSnapshotFile(ctx context.Context, svc *snapshot.Service, path string, mode snapshot.Mode, logger *slog.Logger) error {
	empty, err := svc.Empty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		logger.Info("store not empty, skipping snapshot file", "path", path)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	doc, err := snapshot.Decode(f)
	if err != nil {
		return err
	}
	result, err := svc.Import(ctx, doc, mode)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", path, err)
	}

	logger.Info("snapshot file loaded", "path", path, "mode", mode, "groups", len(result.Groups))
	return nil
}
