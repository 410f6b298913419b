package production

import (
	"sync"
	"time"

	"github.com/comalice/fwsm"
)

// Namer turns the numeric identifiers reported to observers into names.
// *core.Machine implements it.
type Namer interface {
	StateName(d *fwsm.Descriptor, id fwsm.StateID) string
	ChoiceName(d *fwsm.Descriptor, id fwsm.ChoiceID) string
	TriggerName(tr fwsm.Trigger) string
}

// PublishedEvent is a transition or an error as seen by the outside world.
type PublishedEvent struct {
	Machine   string    `json:"machine"`
	Trigger   string    `json:"trigger,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Via       string    `json:"via,omitempty"`
	Err       string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChannelPublisher is an observer forwarding transitions and errors to a
// channel. Publishing never blocks: events are dropped while the channel is
// full, and after Close.
type ChannelPublisher struct {
	mu      sync.RWMutex
	ch      chan<- PublishedEvent
	names   Namer
	closed  bool
	dropped uint64
}

// NewChannelPublisher creates a ChannelPublisher writing to ch.
func NewChannelPublisher(ch chan<- PublishedEvent, names Namer) *ChannelPublisher {
	return &ChannelPublisher{ch: ch, names: names}
}

func (p *ChannelPublisher) OnTransition(d *fwsm.Descriptor, tr fwsm.Transition) {
	p.publish(PublishedEvent{
		Machine:   d.Name(),
		Trigger:   p.names.TriggerName(tr.Trigger),
		From:      p.names.StateName(d, tr.From),
		To:        p.names.StateName(d, tr.To),
		Via:       p.names.ChoiceName(d, tr.Via),
		Timestamp: time.Now().UTC(),
	})
}

func (p *ChannelPublisher) OnError(d *fwsm.Descriptor, code fwsm.ErrCode) {
	p.publish(PublishedEvent{
		Machine:   d.Name(),
		From:      p.names.StateName(d, d.CurState()),
		Err:       code.String(),
		Timestamp: time.Now().UTC(),
	})
}

func (p *ChannelPublisher) publish(ev PublishedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.dropped++
		return
	}
	select {
	case p.ch <- ev:
	default:
		p.dropped++
	}
}

// Dropped returns the number of events that could not be delivered.
func (p *ChannelPublisher) Dropped() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dropped
}

// Close closes the channel.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}

// Fanout forwards notifications to several observers in order.
type Fanout struct {
	observers []fwsm.Observer
}

// Add appends observers. It must not be called while machines run.
func (f *Fanout) Add(obs ...fwsm.Observer) {
	f.observers = append(f.observers, obs...)
}

func (f *Fanout) OnTransition(d *fwsm.Descriptor, tr fwsm.Transition) {
	for _, o := range f.observers {
		o.OnTransition(d, tr)
	}
}

func (f *Fanout) OnError(d *fwsm.Descriptor, code fwsm.ErrCode) {
	for _, o := range f.observers {
		o.OnError(d, code)
	}
}
