package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockSweeper is a mock implementation of Sweeper
type mockSweeper struct {
	mu      sync.Mutex
	calls   int
	idle    time.Duration
	removed int
}

func (m *mockSweeper) SweepIdle(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.idle = idle
	return m.removed
}

func (m *mockSweeper) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(&mockSweeper{}, 0, time.Minute, zap.NewNop())

	assert.Equal(t, DefaultSweepInterval, s.interval)
	assert.Equal(t, time.Minute, s.idle)
}

func TestScheduler_SweepIdleSessions(t *testing.T) {
	sweeper := &mockSweeper{removed: 2}
	s := New(sweeper, time.Minute, 30*time.Minute, zap.NewNop())

	s.sweepIdleSessions()

	assert.Equal(t, 1, sweeper.callCount())
	assert.Equal(t, 30*time.Minute, sweeper.idle)
}

func TestScheduler_StartRunsSweep(t *testing.T) {
	sweeper := &mockSweeper{}
	s := New(sweeper, 50*time.Millisecond, time.Minute, zap.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.callCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}
