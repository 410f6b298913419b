// Package config loads typed configuration from environment variables. A
// .env file in the working directory is read once before the first load.
package config

import (
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

var (
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	ErrNilPointer    = errors.New("nil pointer provided to config loader")
)

var (
	dotenv sync.Once

	cacheMu sync.Mutex
	cache   = make(map[reflect.Type]any)
)

// Load fills v from the environment. Each configuration type is parsed once;
// later calls for the same type return the cached value.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenv.Do(func() {
		// a missing .env file is fine
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}
	if err := env.Parse(v); err != nil {
		return errors.Mark(errors.Wrap(err, "config"), ErrParsingConfig)
	}
	cache[key] = *v
	return nil
}

// Parse fills v from the environment without caching.
func Parse[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Mark(errors.Wrap(err, "config"), ErrParsingConfig)
	}
	return nil
}

// MustLoad is Load for configuration the program cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(errors.Wrap(err, "loading required configuration"))
	}
}
