package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rojanmagar2001/sitemap404/internal/logger"
)

func TestNew_DefaultsAreUsable(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Debug("filtered at info level")
	l.Info("info message", logger.String("key", "value"))
}

func TestFromZap_WithCarriesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.FromZap(zap.New(core)).With(logger.String("run_id", "abc"))

	l.Warn("check failed", logger.Error(errors.New("boom")), logger.Int("attempt", 2))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["run_id"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 2, ctx["attempt"])
}

func TestNop_DoesNotPanic(t *testing.T) {
	t.Parallel()

	l := logger.NewNop()
	l.Error("ignored")
	assert.Same(t, l, l.With(logger.Bool("x", true)))
	assert.NoError(t, l.Sync())
}
