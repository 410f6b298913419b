package logger

import (
	"log/slog"
)

// Error records err under "error", or nothing when err is nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Machine records a descriptor name under "machine".
func Machine(name string) slog.Attr {
	return slog.String("machine", name)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
