// Package connectivity tracks whether the remote analysis backend is
// reachable. The probe keeps a binary online/offline state, re-checks it
// on an interval and pushes transitions to subscribers.
package connectivity

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the binary connectivity state
type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// CheckFunc reports whether the network path is currently usable.
// A check failure of any kind means offline; no retry is attempted.
type CheckFunc func(ctx context.Context) bool

// DialCheck returns a CheckFunc that attempts a TCP connection to addr
// (host:port) within timeout.
func DialCheck(addr string, timeout time.Duration) CheckFunc {
	return func(ctx context.Context) bool {
		dialer := net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

// Probe monitors connectivity. The initial state is fetched once at
// construction; Start launches periodic re-checks.
type Probe struct {
	check    CheckFunc
	interval time.Duration
	logger   *zap.Logger

	mu    sync.RWMutex
	state State
	subs  []chan State

	stopOnce sync.Once
	stop     chan struct{}
}

// NewProbe creates a probe and performs the initial check synchronously.
// A nil logger disables logging.
func NewProbe(check CheckFunc, interval time.Duration, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	p := &Probe{
		check:    check,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), interval)
	defer cancel()
	if check != nil && check(ctx) {
		p.state = Online
	}
	logger.Debug("connectivity probe initialized", zap.Stringer("state", p.state))

	return p
}

// Start launches the background re-check loop. Stop terminates it.
func (p *Probe) Start() {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), p.interval)
				next := Offline
				if p.check != nil && p.check(ctx) {
					next = Online
				}
				cancel()
				p.SetState(next)
			}
		}
	}()
}

// Stop terminates the background loop and closes subscriber channels.
func (p *Probe) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)

		p.mu.Lock()
		defer p.mu.Unlock()
		for _, ch := range p.subs {
			close(ch)
		}
		p.subs = nil
	})
}

// State returns the latest observed state without blocking.
func (p *Probe) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Online reports whether the last check succeeded.
func (p *Probe) Online() bool {
	return p.State() == Online
}

// Subscribe returns a channel that receives every state transition.
// The channel is buffered; a slow consumer drops transitions rather
// than blocking the probe.
func (p *Probe) Subscribe() <-chan State {
	ch := make(chan State, 4)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// SetState records a state observation and notifies subscribers on
// transitions. Exposed so callers that already know the network failed
// (e.g. a request that just timed out) can update the probe immediately.
func (p *Probe) SetState(next State) {
	p.mu.Lock()
	changed := p.state != next
	p.state = next
	if changed {
		// Notify while holding the lock: Stop closes these channels
		// under the same lock, so a send can never hit a closed one.
		// Sends never block; slow subscribers drop the transition.
		for _, ch := range p.subs {
			select {
			case ch <- next:
			default:
			}
		}
	}
	p.mu.Unlock()

	if changed {
		p.logger.Info("connectivity changed", zap.Stringer("state", next))
	}
}
