package production

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/fwsm"
)

// LoggingObserver logs every transition at info level and every error at
// error level.
type LoggingObserver struct {
	logger *slog.Logger
	names  Namer
}

// NewLoggingObserver creates a LoggingObserver.
func NewLoggingObserver(logger *slog.Logger, names Namer) *LoggingObserver {
	return &LoggingObserver{logger: logger, names: names}
}

func (o *LoggingObserver) OnTransition(d *fwsm.Descriptor, tr fwsm.Transition) {
	attrs := []slog.Attr{
		slog.String("machine", d.Name()),
		slog.String("trigger", o.names.TriggerName(tr.Trigger)),
		slog.String("from", o.names.StateName(d, tr.From)),
		slog.String("to", o.names.StateName(d, tr.To)),
		slog.Uint64("trans_cnt", d.TransCnt()),
	}
	if tr.Via != 0 {
		attrs = append(attrs, slog.String("via", o.names.ChoiceName(d, tr.Via)))
	}
	o.logger.LogAttrs(context.Background(), slog.LevelInfo, "transition", attrs...)
}

func (o *LoggingObserver) OnError(d *fwsm.Descriptor, code fwsm.ErrCode) {
	o.logger.Error("machine error",
		slog.String("machine", d.Name()),
		slog.String("state", o.names.StateName(d, d.CurState())),
		slog.Any("error", code),
	)
}

// MetricsObserver counts transitions and errors with Prometheus.
type MetricsObserver struct {
	names       Namer
	transitions *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

// NewMetricsObserver creates a MetricsObserver and registers its collectors
// with reg.
func NewMetricsObserver(reg prometheus.Registerer, names Namer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		names: names,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fwsm",
			Name:      "transitions_total",
			Help:      "Transitions fired, by machine and destination state.",
		}, []string{"machine", "to"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fwsm",
			Name:      "errors_total",
			Help:      "Errors recorded, by machine and error code.",
		}, []string{"machine", "code"}),
	}
	for _, c := range []prometheus.Collector{o.transitions, o.errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *MetricsObserver) OnTransition(d *fwsm.Descriptor, tr fwsm.Transition) {
	to := o.names.StateName(d, tr.To)
	if tr.To == 0 {
		to = "final"
	}
	o.transitions.WithLabelValues(d.Name(), to).Inc()
}

func (o *MetricsObserver) OnError(d *fwsm.Descriptor, code fwsm.ErrCode) {
	o.errors.WithLabelValues(d.Name(), code.String()).Inc()
}
