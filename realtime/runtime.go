package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/internal/logger"
)

var (
	ErrQueueFull      = errors.New("trigger queue full")
	ErrUnknownMachine = errors.New("unknown machine")
	ErrDuplicate      = errors.New("machine already added")
	ErrRunning        = errors.New("runtime already running")
)

// Config configures the runtime.
type Config struct {
	TickRate           time.Duration // default 16.667ms (60 Hz)
	MaxTriggersPerTick int           // queue capacity, default 1000
	// NoExecute disables the Execute command sent to every machine at the
	// end of each tick.
	NoExecute bool
	Logger    *slog.Logger
}

// Runtime is a tick-based executive owning a set of named descriptors.
type Runtime struct {
	cfg Config
	log *slog.Logger

	// mu guards the machines and everything a tick touches.
	mu       sync.RWMutex
	names    []string
	machines map[string]*fwsm.Descriptor
	reported map[string]fwsm.ErrCode
	tickNum  uint64

	batchMu sync.Mutex
	batch   []Command
	seq     uint64

	runMu   sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewRuntime creates a runtime with no machines.
func NewRuntime(cfg Config) *Runtime {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 16667 * time.Microsecond
	}
	if cfg.MaxTriggersPerTick <= 0 {
		cfg.MaxTriggersPerTick = 1000
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Runtime{
		cfg:      cfg,
		log:      log.With(logger.Component("realtime")),
		machines: make(map[string]*fwsm.Descriptor),
		reported: make(map[string]fwsm.ErrCode),
		batch:    make([]Command, 0, cfg.MaxTriggersPerTick),
	}
}

// Add hands d over to the runtime under name. Run and StartMachines start
// every machine added so far.
func (rt *Runtime) Add(name string, d *fwsm.Descriptor) error {
	if name == "" || d == nil {
		return errors.Newf("invalid machine %q", name)
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, dup := rt.machines[name]; dup {
		return errors.Wrapf(ErrDuplicate, "%q", name)
	}
	rt.machines[name] = d
	rt.names = append(rt.names, name)
	return nil
}

// Names returns the machine names in the order they were added.
func (rt *Runtime) Names() []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return append([]string(nil), rt.names...)
}

// Inspect calls fn with the named machine while no tick runs.
func (rt *Runtime) Inspect(name string, fn func(d *fwsm.Descriptor)) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	d, ok := rt.machines[name]
	if !ok {
		return errors.Wrapf(ErrUnknownMachine, "%q", name)
	}
	fn(d)
	return nil
}

// Send queues tr for the named machine at default priority.
func (rt *Runtime) Send(name string, tr fwsm.Trigger) error {
	return rt.SendWithPriority(name, tr, 0)
}

// Broadcast queues tr for every machine.
func (rt *Runtime) Broadcast(tr fwsm.Trigger, priority int) error {
	return rt.SendWithPriority("", tr, priority)
}

// SendWithPriority queues tr for the named machine. Within a tick, higher
// priorities are delivered first.
func (rt *Runtime) SendWithPriority(name string, tr fwsm.Trigger, priority int) error {
	if name != "" {
		rt.mu.RLock()
		_, ok := rt.machines[name]
		rt.mu.RUnlock()
		if !ok {
			return errors.Wrapf(ErrUnknownMachine, "%q", name)
		}
	}

	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	if len(rt.batch) >= cap(rt.batch) {
		return ErrQueueFull
	}
	rt.batch = append(rt.batch, Command{Machine: name, Trigger: tr, Priority: priority, Seq: rt.seq})
	rt.seq++
	return nil
}

// Forward sends every trigger received from src to the named machine until
// src is closed or ctx is done. Triggers that do not fit in the queue are
// dropped with a warning.
func (rt *Runtime) Forward(ctx context.Context, name string, src <-chan fwsm.Trigger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case tr, ok := <-src:
			if !ok {
				return nil
			}
			err := rt.Send(name, tr)
			switch {
			case errors.Is(err, ErrQueueFull):
				rt.log.Warn("trigger dropped", slog.String("machine", name), slog.Int("trigger", int(tr)))
			case err != nil:
				return err
			}
		}
	}
}

// TickNumber returns the number of completed ticks.
func (rt *Runtime) TickNumber() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.tickNum
}

// StartMachines starts every machine that is not running yet.
func (rt *Runtime) StartMachines() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, name := range rt.names {
		rt.machines[name].Start()
	}
	rt.report()
}

// StopMachines stops every machine.
func (rt *Runtime) StopMachines() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, name := range rt.names {
		rt.machines[name].Stop()
	}
}

// Run starts the machines and ticks until ctx is done, then stops them.
func (rt *Runtime) Run(ctx context.Context) error {
	rt.StartMachines()
	rt.log.Info("runtime started",
		slog.Int("machines", len(rt.Names())),
		slog.Duration("tick_rate", rt.cfg.TickRate),
	)

	ticker := time.NewTicker(rt.cfg.TickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			rt.StopMachines()
			rt.log.Info("runtime stopped", slog.Uint64("ticks", rt.TickNumber()))
			return nil
		case <-ticker.C:
			rt.safeTick()
		}
	}
}

func (rt *Runtime) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			rt.log.Error("tick panicked", slog.Any("panic", r), slog.Uint64("tick", rt.TickNumber()))
		}
	}()
	rt.Tick()
}

// Start runs the runtime in a new goroutine until Stop is called or ctx is
// done.
func (rt *Runtime) Start(ctx context.Context) error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	if rt.cancel != nil {
		return ErrRunning
	}
	ctx, rt.cancel = context.WithCancel(ctx)
	rt.stopped = make(chan struct{})
	go func() {
		defer close(rt.stopped)
		_ = rt.Run(ctx)
	}()
	return nil
}

// Stop stops a runtime started with Start and waits for its goroutine.
func (rt *Runtime) Stop() error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	if rt.cancel == nil {
		return nil
	}
	rt.cancel()
	<-rt.stopped
	rt.cancel = nil
	return nil
}
