package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/logger"
)

type fakeRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func (f *fakeRunner) Run(ctx context.Context) (domain.Report, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return domain.Report{RunID: "r"}, f.err
}

func TestNew_RejectsInvalidExpression(t *testing.T) {
	_, err := New("not a schedule", &fakeRunner{}, logger.NewNop())
	require.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = New("0 3 * * * *", &fakeRunner{}, logger.NewNop())
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestNext(t *testing.T) {
	s, err := New("0 3 * * *", &fakeRunner{}, logger.NewNop())
	require.NoError(t, err)

	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.Local), s.Next(from))
}

func TestTrigger_SkipsWhileRunActive(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := &fakeRunner{started: make(chan struct{}), release: make(chan struct{})}
	s, err := New("@daily", r, logger.FromZap(zap.New(core)))
	require.NoError(t, err)

	done := make(chan bool)
	go func() { done <- s.Trigger() }()
	<-r.started

	assert.True(t, s.Running())
	assert.False(t, s.Trigger())
	assert.Equal(t, 1, logs.FilterMessage("Previous run still active, skipping trigger").Len())

	close(r.release)
	assert.True(t, <-done)
	assert.False(t, s.Running())
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestTrigger_RunErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := &fakeRunner{err: errors.New("save ledger: disk full")}
	s, err := New("@daily", r, logger.FromZap(zap.New(core)))
	require.NoError(t, err)

	assert.True(t, s.Trigger())
	assert.Equal(t, 1, logs.FilterMessage("Scheduled run failed").Len())
	assert.False(t, s.Running())
}

func TestStart_FiresOnSchedule(t *testing.T) {
	r := &fakeRunner{}
	s, err := New("@every 1s", r, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestStop_WaitsForActiveRun(t *testing.T) {
	r := &fakeRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	s, err := New("@every 1s", r, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	select {
	case <-r.started:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled run did not start")
	}
	cancel()

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a run was active")
	case <-time.After(100 * time.Millisecond):
	}

	close(r.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the run finished")
	}
}
