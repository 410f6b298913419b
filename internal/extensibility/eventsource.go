package extensibility

import (
	"sync"
	"time"

	"github.com/comalice/fwsm"
)

// Source delivers triggers to a runtime.
type Source interface {
	Triggers() <-chan fwsm.Trigger
}

// ChannelSource is a Source backed by a Go channel. Send feeds external
// commands into it.
type ChannelSource struct {
	ch chan fwsm.Trigger
}

// NewChannelSource creates a ChannelSource buffering up to size triggers.
func NewChannelSource(size int) *ChannelSource {
	return &ChannelSource{ch: make(chan fwsm.Trigger, size)}
}

// Send queues tr and reports false if the buffer is full.
func (s *ChannelSource) Send(tr fwsm.Trigger) bool {
	select {
	case s.ch <- tr:
		return true
	default:
		return false
	}
}

func (s *ChannelSource) Triggers() <-chan fwsm.Trigger {
	return s.ch
}

// Close closes the channel; Send must not be called afterwards.
func (s *ChannelSource) Close() {
	close(s.ch)
}

// TimerSource emits one trigger periodically, for timeouts and heartbeats.
// Ticks are dropped while the consumer lags behind.
type TimerSource struct {
	ch      chan fwsm.Trigger
	trigger fwsm.Trigger
	ticker  *time.Ticker
	stop    chan struct{}
	once    sync.Once
}

// NewTimerSource creates a TimerSource emitting tr every d.
func NewTimerSource(tr fwsm.Trigger, d time.Duration) *TimerSource {
	t := &TimerSource{
		ch:      make(chan fwsm.Trigger, 10),
		trigger: tr,
		ticker:  time.NewTicker(d),
		stop:    make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TimerSource) run() {
	defer close(t.ch)
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- t.trigger:
			default:
			}
		case <-t.stop:
			t.ticker.Stop()
			return
		}
	}
}

func (t *TimerSource) Triggers() <-chan fwsm.Trigger {
	return t.ch
}

// Stop stops the ticker and closes the channel. It may be called more than
// once.
func (t *TimerSource) Stop() {
	t.once.Do(func() { close(t.stop) })
}
