package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/babelcloud/gbox/packages/relay/config"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

const (
	// Timeout for a session relaunch
	relaunchTimeout = 2 * time.Minute
	// Timeout for history pruning
	pruneTimeout = 5 * time.Minute
)

// Session is the part of the session controller the watchdog needs.
type Session interface {
	Healthy() bool
	Relaunch(ctx context.Context) error
}

// Pruner deletes history older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// Manager manages cron jobs
type Manager struct {
	cron      *cron.Cron
	logger    *logger.Logger
	session   Session
	pruner    Pruner
	schedules config.CronConfig
	retention time.Duration
	now       func() time.Time
}

// NewManager creates a new cron manager. A nil pruner or a zero retention
// disables history pruning.
func NewManager(logger *logger.Logger, schedules config.CronConfig, session Session, pruner Pruner, retention time.Duration) *Manager {
	return &Manager{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.Named("cron"),
		session:   session,
		pruner:    pruner,
		schedules: schedules,
		retention: retention,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the scheduler.
func (m *Manager) Start() error {
	if m.session != nil && m.schedules.Watchdog != "" {
		if _, err := m.cron.AddFunc(m.schedules.Watchdog, m.checkSession); err != nil {
			return fmt.Errorf("failed to add session watchdog job: %w", err)
		}
	}

	if m.pruner != nil && m.retention > 0 && m.schedules.Prune != "" {
		if _, err := m.cron.AddFunc(m.schedules.Prune, m.pruneHistory); err != nil {
			return fmt.Errorf("failed to add history prune job: %w", err)
		}
	}

	m.cron.Start()
	m.logger.Info("Cron manager started with %d job(s)", len(m.cron.Entries()))
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
	m.logger.Info("Cron manager stopped")
}

// checkSession relaunches the browser when the page has died.
func (m *Manager) checkSession() {
	if m.session.Healthy() {
		return
	}
	m.logger.Warn("Browser session is down, relaunching")
	ctx, cancel := context.WithTimeout(context.Background(), relaunchTimeout)
	defer cancel()

	if err := m.session.Relaunch(ctx); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			m.logger.Error("Session relaunch timed out after %v", relaunchTimeout)
		} else {
			m.logger.Error("Failed to relaunch session: %v", err)
		}
		return
	}
	m.logger.Success("Browser session relaunched")
}

// pruneHistory deletes history older than the retention window.
func (m *Manager) pruneHistory() {
	cutoff := m.now().Add(-m.retention)
	m.logger.Info("Pruning history before %s", cutoff.Format(time.RFC3339))
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	removed, err := m.pruner.Prune(ctx, cutoff)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			m.logger.Error("History pruning timed out after %v", pruneTimeout)
		} else {
			m.logger.Error("Failed to prune history: %v", err)
		}
		return
	}
	m.logger.Info("Pruned %d history entries", removed)
}
