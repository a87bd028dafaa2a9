package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/babelcloud/gbox/packages/relay/config"
	assistantSvc "github.com/babelcloud/gbox/packages/relay/internal/assistant/service"
	browserSvc "github.com/babelcloud/gbox/packages/relay/internal/browser/service"
	chatSvc "github.com/babelcloud/gbox/packages/relay/internal/chat/service"
	"github.com/babelcloud/gbox/packages/relay/internal/common"
	"github.com/babelcloud/gbox/packages/relay/internal/cron"
	historySvc "github.com/babelcloud/gbox/packages/relay/internal/history/service"
	miscSvc "github.com/babelcloud/gbox/packages/relay/internal/misc/service"
	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
	"github.com/babelcloud/gbox/packages/relay/pkg/format"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.New()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic recovered: %v", r)
			os.Exit(1)
		}
	}()

	cfg := config.GetInstance()
	log.SetLevelName(cfg.Log.Level)

	mode, err := model.ParseDisplayMode(cfg.Browser.Mode)
	if err != nil {
		return err
	}

	// Browser session. Failing to establish it is fatal.
	launcher, err := browserSvc.NewPlaywrightLauncher(log)
	if err != nil {
		log.Fatal("Failed to start playwright: %v", err)
	}
	executor := browserSvc.NewExecutor(log)
	session := browserSvc.NewController(launcher, executor, cfg.Browser, log)
	defer func() {
		if err := session.Close(); err != nil {
			log.Error("Failed to close browser session: %v", err)
		}
	}()

	launchCtx, cancel := context.WithTimeout(ctx, cfg.Browser.LaunchTimeout+30*time.Second)
	err = session.Launch(launchCtx, mode)
	cancel()
	if err != nil {
		_ = session.Close()
		log.Fatal("Failed to establish browser session: %v", err)
	}
	log.Info("%s", format.FormatDisplayMode(mode.Label(), cfg.Browser.StartURL))

	// History
	store, err := openHistory(ctx, cfg.History, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// Assistant
	var generator assistantSvc.Generator
	gemini, err := assistantSvc.NewGeminiGenerator(ctx, cfg.Model)
	if err != nil {
		log.Warn("Model unavailable, chat will answer with the fallback reply: %v", err)
		generator = assistantSvc.UnavailableGenerator{Reason: err}
	} else {
		generator = gemini
		log.Info("Using model %s", cfg.Model.Name)
	}
	planner := assistantSvc.NewGeminiPlanner(generator, cfg.Model, log)

	chat := chatSvc.New(session, planner, store, log,
		chatSvc.WithRateLimit(cfg.Server.ChatRate, cfg.Server.ChatBurst))
	misc := miscSvc.New(session)

	cronManager := cron.NewManager(log, cfg.Cron, session, store, cfg.History.Retention)
	if err := cronManager.Start(); err != nil {
		return err
	}
	defer cronManager.Stop()

	container, ws := newContainer(log, cfg.Server.StaticDir, services{
		session: session,
		chat:    chat,
		history: store,
		misc:    misc,
	})
	logEndpoints(log, ws)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting server on %s", addr)
	log.Info("Accessible URLs:")
	for _, url := range common.AccessURLs(cfg.Server.Port) {
		log.Info("  %s", url)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:    addr,
		Handler: container,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-sigChan:
		log.Info("Shutting down server...")
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited properly")
	return nil
}

// openHistory connects to Postgres when a DSN is configured and falls back to
// the in-memory store otherwise.
func openHistory(ctx context.Context, cfg config.HistoryConfig, log *logger.Logger) (historySvc.Store, error) {
	if cfg.DSN == "" {
		log.Warn("No database configured, chat history is kept in memory")
		return historySvc.NewMemoryStore(), nil
	}

	store, err := historySvc.Connect(ctx, cfg.DSN, cfg.Table, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	if cfg.Retention > 0 {
		log.Info("History retention: %s", common.FormatDurationConcise(cfg.Retention))
	}
	return store, nil
}
