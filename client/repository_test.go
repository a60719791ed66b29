package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositorySharesOneLoopPerKey(t *testing.T) {
	repo := NewRepository()

	var fetches int64
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt64(&fetches, 1)
		return "snapshot", nil
	}

	var got1, got2 int64
	unsub1 := repo.Subscribe("rec-1", 20*time.Millisecond, fetch, func(any) { atomic.AddInt64(&got1, 1) })
	unsub2 := repo.Subscribe("rec-1", 20*time.Millisecond, fetch, func(any) { atomic.AddInt64(&got2, 1) })

	time.Sleep(110 * time.Millisecond)
	unsub1()
	unsub2()

	n := atomic.LoadInt64(&fetches)
	require.GreaterOrEqual(t, n, int64(2), "loop should have polled several times")

	// Both subscribers ride the same loop: each successful fetch is
	// delivered to both, and neither triggers extra requests.
	d1 := atomic.LoadInt64(&got1)
	d2 := atomic.LoadInt64(&got2)
	assert.InDelta(t, d1, d2, 1)
	assert.LessOrEqual(t, d1, n)
}

func TestRepositoryStopsWhenLastSubscriberLeaves(t *testing.T) {
	repo := NewRepository()

	var fetches int64
	unsub := repo.Subscribe("rec-1", 5*time.Millisecond, func(ctx context.Context) (any, error) {
		atomic.AddInt64(&fetches, 1)
		return nil, nil
	}, func(any) {})

	time.Sleep(30 * time.Millisecond)
	unsub()
	settled := atomic.LoadInt64(&fetches)

	time.Sleep(50 * time.Millisecond)
	// At most one in-flight fetch can land after cancellation.
	assert.LessOrEqual(t, atomic.LoadInt64(&fetches), settled+1)
}

func TestRepositoryBacksOffOnFailure(t *testing.T) {
	repo := NewRepository()
	base := 10 * time.Millisecond

	var mu sync.Mutex
	var stamps []time.Time
	unsub := repo.Subscribe("rec-1", base, func(ctx context.Context) (any, error) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		return nil, errors.New("server unreachable")
	}, func(any) {})
	defer unsub()

	// Enough time for the delay ladder: 20, 40, 40, 40ms...
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(stamps), 4)

	// The third gap onward sits at the cap: four times the base interval,
	// not still doubling.
	capGap := base * maxBackoffFactor
	for i := 3; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		assert.GreaterOrEqual(t, gap, capGap-2*time.Millisecond, "gap %d", i)
		assert.Less(t, gap, capGap*4, "gap %d should be capped", i)
	}
}

func TestRepositoryRecoversAfterSuccess(t *testing.T) {
	repo := NewRepository()
	base := 10 * time.Millisecond

	var calls int64
	var delivered int64
	unsub := repo.Subscribe("rec-1", base, func(ctx context.Context) (any, error) {
		n := atomic.AddInt64(&calls, 1)
		if n <= 2 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}, func(any) { atomic.AddInt64(&delivered, 1) })
	defer unsub()

	// Failures cost 20+40ms; once fetches succeed the loop is back at the
	// base interval, so plenty of deliveries fit into the remaining time.
	time.Sleep(300 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&delivered), int64(5))
}

func TestRepositoryRefreshSkipsWait(t *testing.T) {
	repo := NewRepository()

	var fetches int64
	unsub := repo.Subscribe("rec-1", time.Hour, func(ctx context.Context) (any, error) {
		atomic.AddInt64(&fetches, 1)
		return nil, nil
	}, func(any) {})
	defer unsub()

	// First fetch fires immediately; the next one would be an hour away.
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fetches) == 1
	}, time.Second, 5*time.Millisecond)

	repo.Refresh("rec-1")
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fetches) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestRepositoryRefreshUnknownKeyIsNoop(t *testing.T) {
	repo := NewRepository()
	repo.Refresh("nobody-watching") // must not panic or block
}
