package extensibility

import (
	"log/slog"
	"time"

	"github.com/comalice/fwsm"
)

// LoggingAction wraps an action and logs each run at debug level.
type LoggingAction struct {
	name   string
	inner  fwsm.Action
	logger *slog.Logger
}

// NewLoggingAction creates a LoggingAction wrapping inner.
func NewLoggingAction(name string, inner fwsm.Action, logger *slog.Logger) *LoggingAction {
	return &LoggingAction{name: name, inner: inner, logger: logger}
}

// Run delegates to the inner action.
func (a *LoggingAction) Run(d *fwsm.Descriptor) {
	start := time.Now()
	a.inner.Run(d)
	a.logger.Debug("action executed",
		slog.String("machine", d.Name()),
		slog.String("action", a.name),
		slog.Int("state", int(d.CurState())),
		slog.Duration("took", time.Since(start)),
	)
}

// Counter returns an action adding one to *n on every run.
func Counter(n *int) fwsm.Action {
	return fwsm.ActionFunc(func(*fwsm.Descriptor) { *n++ })
}
