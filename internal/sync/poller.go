// Package sync schedules background refreshes of the email set.
package sync

import (
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// TickMsg is a tea.Msg sent each time the refresh interval elapses.
type TickMsg struct {
	At time.Time
}

// Poller emits a TickMsg every interval while running. The app answers a
// tick with a background load; the poller itself never talks to the
// backend.
type Poller struct {
	interval time.Duration
	log      *zap.Logger

	mu      gosync.Mutex
	running bool
	tickCh  chan TickMsg
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Poller. A non-positive interval yields a disabled poller
// whose Start is a no-op.
func New(interval time.Duration, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		interval: interval,
		log:      log.Named("poller"),
	}
}

// Enabled reports whether the poller has an interval to run on.
func (p *Poller) Enabled() bool {
	return p.Interval() > 0
}

// Interval returns the refresh interval.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// Running reports whether the tick goroutine is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start launches the tick goroutine and returns a command that waits for
// the first tick. It returns nil when disabled or already running.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.interval <= 0 || p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.tickCh = make(chan TickMsg, 1)
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	interval := p.interval
	tickCh, stopCh, doneCh := p.tickCh, p.stopCh, p.doneCh
	p.mu.Unlock()

	p.log.Info("auto refresh started", zap.Duration("interval", interval))
	go run(interval, tickCh, stopCh, doneCh)
	return waitForTick(tickCh, stopCh)
}

// Stop halts the tick goroutine and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	doneCh := p.doneCh
	p.mu.Unlock()

	<-doneCh
	p.log.Info("auto refresh stopped")
}

// Restart stops the poller, adopts a new interval and starts again.
func (p *Poller) Restart(interval time.Duration) tea.Cmd {
	p.Stop()
	p.mu.Lock()
	p.interval = interval
	p.mu.Unlock()
	return p.Start()
}

// WaitForNextTick returns a command that waits for the next tick. Call it
// after handling each TickMsg to keep listening. It returns nil when the
// poller is not running.
func (p *Poller) WaitForNextTick() tea.Cmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return nil
	}
	return waitForTick(p.tickCh, p.stopCh)
}

func run(interval time.Duration, tickCh chan<- TickMsg, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			select {
			case tickCh <- TickMsg{At: now}:
			default:
				// Previous tick not consumed yet; one pending tick is enough.
			}
		}
	}
}

// waitForTick blocks until a tick arrives or the poller stops. A stopped
// poller yields a nil message, which Bubble Tea ignores. Stop wins over a
// tick left in the buffer, so a waiter from before a Restart never hands
// the app a tick to answer.
func waitForTick(tickCh <-chan TickMsg, stopCh <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-tickCh:
			if stopped(stopCh) {
				return nil
			}
			return msg
		case <-stopCh:
			return nil
		}
	}
}

func stopped(stopCh <-chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}
