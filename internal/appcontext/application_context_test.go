package appcontext

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShutdownEmptyContext(t *testing.T) {
	app := &ApplicationContext{}
	err := app.Shutdown(context.Background())
	require.NoError(t, err)
}

// timeout分支先走時 收尾goroutine也要能自行結束
func TestShutdownTimeoutDoesNotLeakGoroutine(t *testing.T) {
	app := &ApplicationContext{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := runtime.NumGoroutine()
	_ = app.Shutdown(ctx)

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}
