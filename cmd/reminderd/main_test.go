package main

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/datekeeper/internal/config"
	"github.com/hray3182/datekeeper/internal/logging"
)

func TestWatchHangupTriggersUntilDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hup := make(chan os.Signal)
	var calls atomic.Int32

	done := make(chan struct{})
	go func() {
		watchHangup(ctx, hup, func() { calls.Add(1) }, logging.OrDiscard(nil))
		close(done)
	}()

	hup <- syscall.SIGHUP
	hup <- syscall.SIGHUP
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchHangup did not return after cancel")
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.MailTransport = config.TransportLog
	logger := logging.OrDiscard(nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, cfg, logger, false, true) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunOnceWithMemoryStore(t *testing.T) {
	cfg := config.Default()
	cfg.MailTransport = config.TransportLog

	require.NoError(t, run(context.Background(), cfg, logging.OrDiscard(nil), true, true))
}
