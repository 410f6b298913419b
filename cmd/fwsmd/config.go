package main

import (
	"time"
)

// Config is read from the environment and an optional .env file.
type Config struct {
	Table     string        `env:"FWSM_TABLE,required"`
	Instances int           `env:"FWSM_INSTANCES" envDefault:"1"`
	TickRate  time.Duration `env:"FWSM_TICK_RATE" envDefault:"16667us"`
	QueueSize int           `env:"FWSM_QUEUE_SIZE" envDefault:"1000"`

	// Guards maps guard names to expressions, e.g. "ready:index >= 1".
	Guards map[string]string `env:"FWSM_GUARDS"`
	// Timers maps trigger names to the period they are broadcast with.
	Timers map[string]time.Duration `env:"FWSM_TIMERS"`

	SnapshotDir    string `env:"FWSM_SNAPSHOT_DIR"`
	SnapshotFormat string `env:"FWSM_SNAPSHOT_FORMAT" envDefault:"json"`

	MetricsAddr string `env:"FWSM_METRICS_ADDR" envDefault:":9090"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}
