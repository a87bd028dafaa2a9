package logger_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

func TestNamedCarriesComponent(t *testing.T) {
	log := logger.New()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.Silence()

	log.Named("executor").Info("clicked at %d,%d", 10, 20)

	out := buf.String()
	assert.Contains(t, out, "component")
	assert.Contains(t, out, "executor")
	assert.Contains(t, out, "clicked at 10,20")
}

func TestSetLevelName(t *testing.T) {
	log := logger.New()
	log.Silence()
	original := log.GetLevel()
	defer log.Logger.SetLevel(original)

	log.SetLevelName("debug")
	assert.True(t, log.IsDebugEnabled())

	log.SetLevelName("not-a-level")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.SetLevelName("warn")
	assert.False(t, log.IsDebugEnabled())
}
