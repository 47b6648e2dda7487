package connectivity_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lujangrego99/kiosco-sub000/internal/connectivity"
)

func TestDisparaUnaSolaVezPorTransicionAOnline(t *testing.T) {
	var reachable atomic.Bool // starts false: terminal boots offline

	m := connectivity.NewMonitor(func(context.Context) bool {
		return reachable.Load()
	}, 5*time.Millisecond)

	var fired atomic.Int64
	unsubscribe := m.OnOnline(func() { fired.Add(1) })
	defer unsubscribe()

	m.Start(context.Background())
	defer m.Stop()

	// Several offline polls: no event, still offline.
	time.Sleep(30 * time.Millisecond)
	assert.False(t, m.IsOnline())
	assert.EqualValues(t, 0, fired.Load())

	// Link comes back: exactly one edge event, even across many polls.
	reachable.Store(true)
	require.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, fired.Load())

	// Drop and recover again: a second edge.
	reachable.Store(false)
	require.Eventually(t, func() bool { return !m.IsOnline() }, time.Second, 5*time.Millisecond)
	reachable.Store(true)
	require.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestUnsubscribeDejaDeNotificar(t *testing.T) {
	var reachable atomic.Bool

	m := connectivity.NewMonitor(func(context.Context) bool {
		return reachable.Load()
	}, 5*time.Millisecond)

	var fired atomic.Int64
	unsubscribe := m.OnOnline(func() { fired.Add(1) })

	m.Start(context.Background())
	defer m.Stop()

	reachable.Store(true)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	unsubscribe()
	reachable.Store(false)
	require.Eventually(t, func() bool { return !m.IsOnline() }, time.Second, 5*time.Millisecond)
	reachable.Store(true)
	require.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 1, fired.Load())
}

func TestUnsubscribeConCallbacksDelMismoLiteral(t *testing.T) {
	var reachable atomic.Bool

	m := connectivity.NewMonitor(func(context.Context) bool {
		return reachable.Load()
	}, 5*time.Millisecond)

	// Two subscribers built from one closure literal: unsubscribing one must
	// not silence the other.
	var a, b atomic.Int64
	contar := func(c *atomic.Int64) func() {
		return func() { c.Add(1) }
	}
	unsubA := m.OnOnline(contar(&a))
	defer unsubA()
	unsubB := m.OnOnline(contar(&b))
	unsubB()

	m.Start(context.Background())
	defer m.Stop()

	reachable.Store(true)
	require.Eventually(t, func() bool { return a.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 1, a.Load())
	assert.EqualValues(t, 0, b.Load())
}

func TestStopDetieneElPolling(t *testing.T) {
	var polls atomic.Int64
	m := connectivity.NewMonitor(func(context.Context) bool {
		polls.Add(1)
		return false
	}, 5*time.Millisecond)

	m.Start(context.Background())
	require.Eventually(t, func() bool { return polls.Load() > 2 }, time.Second, 5*time.Millisecond)
	m.Stop()

	frozen := polls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, polls.Load(), frozen+1) // at most one in-flight poll
}
