package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/comalice/fwsm"
)

// Record is the persisted form of one instance's runtime state.
type Record struct {
	ID        string        `json:"id" yaml:"id"`
	Instance  string        `json:"instance" yaml:"instance"`
	Machine   string        `json:"machine" yaml:"machine"`
	Version   string        `json:"version" yaml:"version"`
	Active    []string      `json:"active,omitempty" yaml:"active,omitempty"`
	Snapshot  fwsm.Snapshot `json:"snapshot" yaml:"snapshot"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
}

// Persister stores the latest record of each instance.
type Persister interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, instance string) (Record, error)
}

// Registry keeps the record history of instances, grouped by machine
// version.
type Registry interface {
	// Register appends rec to the history of its instance.
	Register(ctx context.Context, rec Record) error

	// Latest returns the most recent record of instance.
	Latest(ctx context.Context, instance string) (Record, error)

	// Version returns the most recent record of instance taken at version.
	Version(ctx context.Context, instance, version string) (Record, error)

	// ListVersions returns the versions recorded for instance, newest first.
	ListVersions(ctx context.Context, instance string) ([]string, error)

	// ListInstances returns all instance names, sorted.
	ListInstances(ctx context.Context) ([]string, error)
}

var (
	ErrNotFound      = errors.New("version or instance not found")
	ErrExists        = errors.New("record already exists")
	ErrInvalidRecord = errors.New("invalid record")
)

// MemoryRegistry is an in-process Registry.
type MemoryRegistry struct {
	mu      sync.RWMutex
	history map[string][]Record
	ids     map[string]struct{}
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		history: make(map[string][]Record),
		ids:     make(map[string]struct{}),
	}
}

func (r *MemoryRegistry) Register(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" || rec.Instance == "" || rec.Version == "" {
		return errors.Wrapf(ErrInvalidRecord, "record %q of %q", rec.ID, rec.Instance)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.ids[rec.ID]; dup {
		return errors.Wrapf(ErrExists, "record %s", rec.ID)
	}
	r.ids[rec.ID] = struct{}{}
	r.history[rec.Instance] = append(r.history[rec.Instance], rec)
	return nil
}

func (r *MemoryRegistry) Latest(ctx context.Context, instance string) (Record, error) {
	return r.find(ctx, instance, func(Record) bool { return true })
}

func (r *MemoryRegistry) Version(ctx context.Context, instance, version string) (Record, error) {
	return r.find(ctx, instance, func(rec Record) bool { return rec.Version == version })
}

func (r *MemoryRegistry) find(ctx context.Context, instance string, match func(Record) bool) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h := r.history[instance]
	for i := len(h) - 1; i >= 0; i-- {
		if match(h[i]) {
			return h[i], nil
		}
	}
	return Record{}, errors.Wrapf(ErrNotFound, "instance %q", instance)
}

func (r *MemoryRegistry) ListVersions(ctx context.Context, instance string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.history[instance]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "instance %q", instance)
	}
	var versions []string
	seen := make(map[string]struct{})
	for i := len(h) - 1; i >= 0; i-- {
		if _, dup := seen[h[i].Version]; !dup {
			seen[h[i].Version] = struct{}{}
			versions = append(versions, h[i].Version)
		}
	}
	return versions, nil
}

func (r *MemoryRegistry) ListInstances(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.history))
	for n := range r.history {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
