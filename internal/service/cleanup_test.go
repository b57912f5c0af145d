package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/testutil"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	mu      sync.Mutex
	calls   int
	removed int
	seen    []time.Time
}

func (c *countingSweeper) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.seen = append(c.seen, now)
	return c.removed
}

func (c *countingSweeper) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestCleanupService_Cleanup(t *testing.T) {
	tests := []struct {
		name     string
		removed  []int
		expected int
	}{
		{name: "nothing expired", removed: []int{0, 0}, expected: 0},
		{name: "sums sweepers", removed: []int{2, 3}, expected: 5},
		{name: "no sweepers", removed: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sweepers []Sweeper
			var counters []*countingSweeper
			for _, r := range tt.removed {
				c := &countingSweeper{removed: r}
				counters = append(counters, c)
				sweepers = append(sweepers, c)
			}

			svc := NewCleanupService(testutil.NewTestLogger(), sweepers...)
			fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
			svc.now = func() time.Time { return fixed }

			assert.Equal(t, tt.expected, svc.Cleanup())
			for _, c := range counters {
				assert.Equal(t, 1, c.Calls())
				assert.Equal(t, []time.Time{fixed}, c.seen)
			}
		})
	}
}

func TestCleanupService_Run(t *testing.T) {
	sweeper := &countingSweeper{}
	svc := NewCleanupService(testutil.NewTestLogger(), sweeper)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.Calls() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup job did not stop")
	}
}
