package core

import (
	"log/slog"

	"github.com/comalice/fwsm"
	"github.com/comalice/fwsm/internal/logger"
)

// Option configures Load.
type Option func(*options)

type options struct {
	observer fwsm.Observer
	data     any
	logger   *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) descriptorOptions() []fwsm.Option {
	var opts []fwsm.Option
	if o.observer != nil {
		opts = append(opts, fwsm.WithObserver(o.observer))
	}
	if o.data != nil {
		opts = append(opts, fwsm.WithData(o.data))
	}
	return opts
}

// WithObserver attaches o to every descriptor of the hierarchy. Derived
// instances inherit it.
func WithObserver(o fwsm.Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithData attaches application data to the base descriptors.
func WithData(data any) Option {
	return func(opts *options) {
		opts.data = data
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) {
		if l != nil {
			opts.logger = l
		}
	}
}
