package resolver

import (
	"context"
)

// StaticSource is a VariableSource over a fixed in-memory map. CLI -e
// overrides and environment snapshots are both exposed through it.
type StaticSource struct {
	name     string
	priority int
	values   map[string]string
}

// NewStaticSource creates a source over values; the map is not copied,
// the caller must not mutate it afterwards.
func NewStaticSource(name string, priority int, values map[string]string) *StaticSource {
	if values == nil {
		values = make(map[string]string)
	}
	return &StaticSource{name: name, priority: priority, values: values}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Priority() int { return s.priority }

func (s *StaticSource) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}
