// Package connectivity reports whether the terminal can currently reach the
// kiosco backend and raises an event on each offline→online transition.
package connectivity

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/rs/zerolog/log"
)

const topicOnline = "connectivity:online"

// Oracle is what the sync engine and checkout consult. OnOnline is
// edge-triggered: the callback fires once per offline→online transition,
// never on polls that find the link already up.
type Oracle interface {
	IsOnline() bool
	// OnOnline registers fn and returns its unsubscribe function.
	OnOnline(fn func()) (unsubscribe func())
}

// Probe answers whether the backend is reachable right now.
type Probe func(ctx context.Context) bool

// TCPProbe reports reachability by dialing address (host:port). Good enough
// for a POS box: if the socket opens, the API is almost certainly up.
func TCPProbe(address string, timeout time.Duration) Probe {
	return func(ctx context.Context) bool {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

// Monitor polls a Probe on a fixed interval and publishes the online edge on
// an event bus. It starts offline and reports the first successful probe as
// a transition, which doubles as the app-start sync trigger.
type Monitor struct {
	probe    Probe
	interval time.Duration
	bus      EventBus.Bus
	online   atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	subs   map[uint64]func()
	subSeq uint64
}

func NewMonitor(probe Probe, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	m := &Monitor{
		probe:    probe,
		interval: interval,
		bus:      EventBus.New(),
		subs:     make(map[uint64]func()),
	}
	_ = m.bus.Subscribe(topicOnline, m.dispatchOnline)
	return m
}

// IsOnline returns the result of the most recent probe.
func (m *Monitor) IsOnline() bool { return m.online.Load() }

// OnOnline tracks fn in the keyed registry instead of subscribing it to the
// bus directly: the bus matches handlers by code pointer, so two closures of
// the same literal would remove each other on unsubscribe.
func (m *Monitor) OnOnline(fn func()) (unsubscribe func()) {
	m.mu.Lock()
	m.subSeq++
	id := m.subSeq
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// dispatchOnline is the bus's sole subscriber; it fans the edge out to the
// registered callbacks.
func (m *Monitor) dispatchOnline() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Start begins polling until ctx is cancelled or Stop is called. The first
// probe runs immediately rather than one interval in.
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.check(ctx)
			}
		}
	}()
}

// Stop halts polling. Subscribers stay registered.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Monitor) check(ctx context.Context) {
	online := m.probe(ctx)
	was := m.online.Swap(online)
	switch {
	case online && !was:
		log.Info().Msg("conexión recuperada")
		m.bus.Publish(topicOnline)
	case !online && was:
		log.Warn().Msg("conexión perdida — modo offline")
	}
}
