// Package production provides the integrations used when machines run for
// real: snapshot persistence, transition publishing, logging and metrics
// observers, and visualization.
package production

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/comalice/fwsm/internal/core"
)

// ErrNoRecord is returned by Load when an instance has never been saved.
var ErrNoRecord = errors.New("no record")

type codec struct {
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var (
	jsonCodec = codec{
		ext:       ".json",
		marshal:   func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
		unmarshal: json.Unmarshal,
	}
	yamlCodec = codec{ext: ".yaml", marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}
)

// filePersister keeps the latest record of each instance in one file per
// instance.
type filePersister struct {
	dir   string
	codec codec
}

func newFilePersister(dir string, c codec) (*filePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "mkdir %s", dir)
	}
	return &filePersister{dir: dir, codec: c}, nil
}

func (p *filePersister) path(instance string) string {
	return filepath.Join(p.dir, instance+p.codec.ext)
}

func (p *filePersister) Save(ctx context.Context, rec core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Instance == "" || filepath.Base(rec.Instance) != rec.Instance {
		return errors.Newf("invalid instance name %q", rec.Instance)
	}
	data, err := p.codec.marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encode record of %s", rec.Instance)
	}
	fn := p.path(rec.Instance)
	tmp := fn + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, fn); err != nil {
		return errors.Wrapf(err, "rename %s", tmp)
	}
	return nil
}

func (p *filePersister) Load(ctx context.Context, instance string) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}
	fn := p.path(instance)
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Record{}, errors.Wrapf(ErrNoRecord, "instance %q", instance)
		}
		return core.Record{}, errors.Wrapf(err, "read %s", fn)
	}
	var rec core.Record
	if err := p.codec.unmarshal(data, &rec); err != nil {
		return core.Record{}, errors.Wrapf(err, "decode %s", fn)
	}
	rec.Instance = instance
	return rec, nil
}

// JSONPersister stores records as indented JSON files.
type JSONPersister struct{ *filePersister }

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	p, err := newFilePersister(dir, jsonCodec)
	if err != nil {
		return nil, err
	}
	return &JSONPersister{p}, nil
}

// YAMLPersister stores records as YAML files.
type YAMLPersister struct{ *filePersister }

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	p, err := newFilePersister(dir, yamlCodec)
	if err != nil {
		return nil, err
	}
	return &YAMLPersister{p}, nil
}

var (
	_ core.Persister = (*JSONPersister)(nil)
	_ core.Persister = (*YAMLPersister)(nil)
)
