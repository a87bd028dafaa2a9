package service

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

func TestCloseAfterFailureLogsCloseError(t *testing.T) {
	log := logger.New()
	log.Silence()
	hook := test.NewLocal(log.Logger)
	defer hook.Reset()
	l := &PlaywrightLauncher{log: log.Named("launcher")}

	l.closeAfterFailure(func() error { return errors.New("browser has been closed") })

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "browser has been closed")
	assert.Equal(t, "launcher", entry.Data["component"])
}

func TestCloseAfterFailureQuietOnSuccess(t *testing.T) {
	log := logger.New()
	log.Silence()
	hook := test.NewLocal(log.Logger)
	defer hook.Reset()
	l := &PlaywrightLauncher{log: log.Named("launcher")}

	closed := false
	l.closeAfterFailure(func() error {
		closed = true
		return nil
	})

	assert.True(t, closed)
	assert.Empty(t, hook.AllEntries())
}
