package lthread

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := New(WithAlarmInterval(2 * time.Millisecond))
	require.NoError(t, s.Init())
	t.Cleanup(s.Shutdown)
	return s
}

// Scenario 1: Handshake.
func TestScenario_Handshake(t *testing.T) {
	s := newTestScheduler(t)
	h, err := s.Create(func(any) any { return 42 }, nil)
	require.NoError(t, err)
	rv, err := s.Join(h)
	require.NoError(t, err)
	assert.Equal(t, 42, rv)
}

// Scenario 2: Two workers, XOR result.
func TestScenario_TwoWorkersXOR(t *testing.T) {
	s := newTestScheduler(t)
	worker := func(arg any) any {
		return 0xDEAD0000 ^ arg.(int)
	}
	h1, err := s.Create(worker, 1)
	require.NoError(t, err)
	h2, err := s.Create(worker, 2)
	require.NoError(t, err)

	rv1, err := s.Join(h1)
	require.NoError(t, err)
	rv2, err := s.Join(h2)
	require.NoError(t, err)

	assert.Equal(t, 0xDEAD0001, rv1)
	assert.Equal(t, 0xDEAD0002, rv2)
}

// Scenario 3: Thrash — repeated create/join cycles must not leak handle
// table growth beyond a small bound.
func TestScenario_Thrash(t *testing.T) {
	s := newTestScheduler(t)
	const iterations = 200 // scaled down from the spec's 10,000 for test runtime
	const fanout = 20

	for i := 0; i < iterations; i++ {
		handles := make([]Handle, 0, fanout)
		for j := 0; j < fanout; j++ {
			h, err := s.Create(func(any) any { return nil }, nil)
			require.NoError(t, err)
			handles = append(handles, h)
		}
		for _, h := range handles {
			_, err := s.Join(h)
			require.NoError(t, err)
		}
	}

	assert.LessOrEqual(t, len(s.table.slots), fanout+4,
		"handle table should stabilize near the peak concurrent thread count, not grow unbounded")
}

// Scenario 4: Locked counter — N threads each perform K increments inside
// a block/unblock critical section; final sum must equal N*K, matching
// spec.md's literal scenario (no explicit yield inside the loop).
//
// This implementation has no real asynchronous preemption (see the
// package-level preemption-scope note and DESIGN.md): nothing can
// interrupt a running goroutine mid-loop, so with no yield point inside
// the loop body each of the N created threads simply runs to completion
// before the next one is ever scheduled. The N*K result this test checks
// therefore holds trivially by construction (true sequential execution),
// not because block/unblock enforced mutual exclusion against real
// interleaving — that guarantee is exercised instead by
// TestBoundary_BlockUnblockRestoresMask and by Yield/Sleep's no-op-while-
// masked behavior. This test still pins down that Create/Join correctly
// drive N independently-scheduled threads to completion without losing
// or duplicating any increment.
func TestScenario_LockedCounter(t *testing.T) {
	s := newTestScheduler(t)
	const n = 10
	const k = 2000 // scaled down from the spec's 20,000 for test runtime

	var sum int
	handles := make([]Handle, 0, n)
	for i := 0; i < n; i++ {
		h, err := s.Create(func(any) any {
			for j := 0; j < k; j++ {
				s.Block()
				sum++
				sum--
				sum++
				s.Unblock()
			}
			return nil
		}, nil)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	for _, h := range handles {
		_, err := s.Join(h)
		require.NoError(t, err)
	}
	assert.Equal(t, n*k, sum)
}

// Scenario 5: Sleep accuracy.
func TestScenario_SleepAccuracy(t *testing.T) {
	s := newTestScheduler(t)
	var elapsed time.Duration
	h, err := s.Create(func(any) any {
		start := time.Now()
		_ = s.Sleep(100 * time.Millisecond)
		elapsed = time.Since(start)
		return nil
	}, nil)
	require.NoError(t, err)
	_, err = s.Join(h)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

// Scenario 6: Producer/consumer via yield.
func TestScenario_ProducerConsumerViaYield(t *testing.T) {
	s := newTestScheduler(t)
	source := "alpha\nbravo\ncharlie\ndelta"
	lines := strings.Split(source, "\n")

	var mu sync.Mutex
	var queue []string
	done := false

	producer := func(any) any {
		for _, line := range lines {
			mu.Lock()
			queue = append(queue, line)
			mu.Unlock()
			s.Yield()
		}
		mu.Lock()
		done = true
		mu.Unlock()
		return nil
	}

	var result []string
	consumer := func(any) any {
		for {
			mu.Lock()
			if len(queue) > 0 {
				line := queue[0]
				queue = queue[1:]
				mu.Unlock()
				result = append(result, line)
				continue
			}
			finished := done
			mu.Unlock()
			if finished {
				return nil
			}
			s.Yield()
		}
	}

	hp, err := s.Create(producer, nil)
	require.NoError(t, err)
	hc, err := s.Create(consumer, nil)
	require.NoError(t, err)

	_, err = s.Join(hp)
	require.NoError(t, err)
	_, err = s.Join(hc)
	require.NoError(t, err)

	assert.Equal(t, source, strings.Join(result, "\n"))
}

// Boundary: a thread with an empty entry reaches DONE and joins without
// deadlock.
func TestBoundary_ImmediateReturnIsJoinable(t *testing.T) {
	s := newTestScheduler(t)
	h, err := s.Create(func(any) any { return nil }, nil)
	require.NoError(t, err)
	_, err = s.Join(h)
	require.NoError(t, err)
}

// Boundary: joining a handle a second time returns ErrAlreadyJoined.
func TestBoundary_DoubleJoinErrors(t *testing.T) {
	s := newTestScheduler(t)
	h, err := s.Create(func(any) any { return 1 }, nil)
	require.NoError(t, err)
	_, err = s.Join(h)
	require.NoError(t, err)
	_, err = s.Join(h)
	assert.True(t, errors.Is(err, ErrAlreadyJoined))
}

// Boundary: create followed by join is a no-op on the handle table — the
// slot becomes free and is reused by a subsequent create.
func TestBoundary_CreateJoinRoundTripFreesSlot(t *testing.T) {
	s := newTestScheduler(t)
	h1, err := s.Create(func(any) any { return nil }, nil)
	require.NoError(t, err)
	_, err = s.Join(h1)
	require.NoError(t, err)

	h2, err := s.Create(func(any) any { return nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, h1.index, h2.index)
	assert.NotEqual(t, h1.generation, h2.generation)
	_, err = s.Join(h2)
	require.NoError(t, err)
}

// Idempotence: block followed by unblock restores the mask to its prior
// state.
func TestBoundary_BlockUnblockRestoresMask(t *testing.T) {
	s := newTestScheduler(t)
	assert.False(t, s.pre.isMasked())
	s.Block()
	s.Unblock()
	assert.False(t, s.pre.isMasked())
}

// Critical section: Yield and Sleep are no-ops while masked, so a thread
// inside a Block/Unblock region is never interleaved with another
// thread, even if it calls one explicitly.
func TestBoundary_YieldAndSleepAreNoOpWhileMasked(t *testing.T) {
	s := newTestScheduler(t)
	var otherRan bool
	h, err := s.Create(func(any) any {
		otherRan = true
		return nil
	}, nil)
	require.NoError(t, err)

	s.Block()
	s.Yield()
	assert.False(t, otherRan, "Yield while masked must not switch to another thread")
	start := time.Now()
	require.NoError(t, s.Sleep(50*time.Millisecond))
	assert.Less(t, time.Since(start), 10*time.Millisecond, "Sleep while masked must return immediately")
	assert.False(t, otherRan, "Sleep while masked must not switch to another thread")
	s.Unblock()

	_, err = s.Join(h)
	require.NoError(t, err)
	assert.True(t, otherRan)
}

func TestDestroy_RemovesThreadFromQueue(t *testing.T) {
	s := newTestScheduler(t)
	h, err := s.Create(func(any) any {
		s.Sleep(time.Hour)
		return nil
	}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Destroy(h))

	assert.Same(t, s.main, s.queue.current, "only the main thread remains queued")
	assert.Same(t, s.main, s.queue.current.link, "the ring holds a single descriptor")
	_, err = s.table.lookup(h)
	assert.Error(t, err)
}
