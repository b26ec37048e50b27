package workspace

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type flushLog struct {
	mu    sync.Mutex
	calls map[string][]int
}

func (l *flushLog) record(key string, v int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[key] = append(l.calls[key], v)
}

func (l *flushLog) snapshot() map[string][]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string][]int, len(l.calls))
	for k, v := range l.calls {
		out[k] = append([]int(nil), v...)
	}
	return out
}

func TestDebouncerCoalescesPerKey(t *testing.T) {
	defer goleak.VerifyNone(t)

	log := &flushLog{calls: map[string][]int{}}
	d := NewDebouncer(20*time.Millisecond, log.record)
	defer d.Stop()

	d.Request("a", 1)
	d.Request("a", 2)
	d.Request("b", 9)
	d.Request("a", 3)
	assert.Equal(t, 2, d.Pending())

	require.Eventually(t, func() bool { return len(log.snapshot()) == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, map[string][]int{"a": {3}, "b": {9}}, log.snapshot())
	assert.Zero(t, d.Pending())
}

func TestDebouncerFlushesAgainAfterQuiet(t *testing.T) {
	defer goleak.VerifyNone(t)

	log := &flushLog{calls: map[string][]int{}}
	d := NewDebouncer(10*time.Millisecond, log.record)
	defer d.Stop()

	d.Request("a", 1)
	require.Eventually(t, func() bool { return len(log.snapshot()["a"]) == 1 }, 2*time.Second, 5*time.Millisecond)
	d.Request("a", 2)
	require.Eventually(t, func() bool { return len(log.snapshot()["a"]) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{1, 2}, log.snapshot()["a"])
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	log := &flushLog{calls: map[string][]int{}}
	d := NewDebouncer(30*time.Millisecond, log.record)

	d.Request("a", 1)
	d.Stop()
	assert.Zero(t, d.Pending())

	d.Request("a", 2)
	assert.Zero(t, d.Pending(), "requests after Stop are dropped")

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, log.snapshot())
	d.Stop()
}

func TestDebouncerStopWaitsForRunningFlush(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished bool
	d := NewDebouncer(time.Millisecond, func(string, int) {
		close(started)
		<-release
		finished = true
	})

	d.Request("a", 1)
	<-started
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	d.Stop()
	assert.True(t, finished)
}

func TestDebouncerCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	log := &flushLog{calls: map[string][]int{}}
	d := NewDebouncer(20*time.Millisecond, log.record)
	defer d.Stop()

	d.Request("a", 1)
	d.Request("b", 2)
	d.Cancel("a")
	assert.Equal(t, 1, d.Pending())

	require.Eventually(t, func() bool { return len(log.snapshot()["b"]) == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.NotContains(t, log.snapshot(), "a")
}
