package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/babelcloud/gbox/packages/relay/config"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

type fakeSession struct {
	healthy   bool
	relaunchs int
	err       error
}

func (s *fakeSession) Healthy() bool { return s.healthy }

func (s *fakeSession) Relaunch(ctx context.Context) error {
	s.relaunchs++
	if s.err == nil {
		s.healthy = true
	}
	return s.err
}

type fakePruner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (p *fakePruner) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	p.calls++
	p.cutoff = olderThan
	return 3, p.err
}

func testLogger() *logger.Logger {
	log := logger.New()
	log.Silence()
	return log
}

var testSchedules = config.CronConfig{Watchdog: "@every 1m", Prune: "0 3 * * *"}

func TestCheckSession(t *testing.T) {
	t.Run("healthy session is left alone", func(t *testing.T) {
		session := &fakeSession{healthy: true}
		NewManager(testLogger(), testSchedules, session, nil, 0).checkSession()
		assert.Zero(t, session.relaunchs)
	})

	t.Run("dead session is relaunched", func(t *testing.T) {
		session := &fakeSession{}
		NewManager(testLogger(), testSchedules, session, nil, 0).checkSession()
		assert.Equal(t, 1, session.relaunchs)
		assert.True(t, session.healthy)
	})

	t.Run("relaunch failure is retried next tick", func(t *testing.T) {
		session := &fakeSession{err: errors.New("chromium missing")}
		m := NewManager(testLogger(), testSchedules, session, nil, 0)
		m.checkSession()
		m.checkSession()
		assert.Equal(t, 2, session.relaunchs)
	})
}

func TestPruneHistory(t *testing.T) {
	pruner := &fakePruner{}
	m := NewManager(testLogger(), testSchedules, nil, pruner, 24*time.Hour)
	m.now = func() time.Time { return time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC) }

	m.pruneHistory()

	assert.Equal(t, 1, pruner.calls)
	assert.Equal(t, time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), pruner.cutoff)
}

func TestStartRegistersJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name      string
		pruner    Pruner
		retention time.Duration
		wantJobs  int
	}{
		{"watchdog and pruning", &fakePruner{}, time.Hour, 2},
		{"retention disabled", &fakePruner{}, 0, 1},
		{"no pruner", nil, time.Hour, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(testLogger(), testSchedules, &fakeSession{healthy: true}, tt.pruner, tt.retention)
			require.NoError(t, m.Start())
			assert.Len(t, m.cron.Entries(), tt.wantJobs)
			m.Stop()
		})
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	m := NewManager(testLogger(), config.CronConfig{Watchdog: "every minute"}, &fakeSession{}, nil, 0)
	assert.Error(t, m.Start())
}
