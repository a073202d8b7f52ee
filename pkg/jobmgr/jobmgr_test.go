package jobmgr

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStartAsyncRejectsDuplicates(t *testing.T) {
	m := NewManager(context.Background(), nil)
	defer m.StopAll()

	block := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	require.NoError(t, m.StartAsync("loop", block))
	assert.ErrorIs(t, m.StartAsync("loop", block), ErrRunning)
	assert.True(t, m.Running("loop"))
	assert.Equal(t, "Running jobs: loop", m.Status())
}

func TestStopWaitsForJob(t *testing.T) {
	var mu sync.Mutex
	var events []string
	m := NewManager(context.Background(), func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	})

	require.NoError(t, m.StartAsync("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	require.NoError(t, m.Stop("loop"))

	assert.False(t, m.Running("loop"))
	assert.ErrorIs(t, m.Stop("loop"), ErrNotRunning)
	assert.Equal(t, "No jobs are running.", m.Status())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, events, "error:loop:context canceled")
}

func TestJobRemovedWhenRunnerReturns(t *testing.T) {
	m := NewManager(context.Background(), nil)
	require.NoError(t, m.StartAsync("once", func(ctx context.Context) error { return nil }))

	assert.Eventually(t, func() bool { return !m.Running("once") }, time.Second, 5*time.Millisecond)
}

func TestParentCancellationStopsJobs(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	m := NewManager(parent, nil)

	require.NoError(t, m.StartAsync("a", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	cancel()

	assert.Eventually(t, func() bool { return len(m.List()) == 0 }, time.Second, 5*time.Millisecond)
}
