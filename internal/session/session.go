// Package session holds the run-scoped variable store that makes request
// chaining work: variables written by one request's scripts are visible to
// every later request in the same run.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"reqchain/internal/types"
)

// Priority is the fixed rank the session holds among variable sources.
// The session outranks every external source, so chained values always
// win over profile and environment values of the same name.
const Priority = 1000

// Session is an insertion-ordered mapping from variable name to value.
// It is owned by exactly one run and mutated only by the orchestrator,
// so it needs no locking.
type Session struct {
	values map[string]any
	order  []string
}

// New creates an empty session.
func New() *Session {
	return &Session{values: make(map[string]any)}
}

// Set stores a value under name, normalizing it into the closed value
// domain. First writes record insertion order for export.
func (s *Session) Set(name string, value any) {
	if _, exists := s.values[name]; !exists {
		s.order = append(s.order, name)
	}
	s.values[name] = types.NormalizeValue(value)
}

// Get returns the value stored under name.
func (s *Session) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Merge copies every entry of vars into the session.
func (s *Session) Merge(vars map[string]any) {
	for name, value := range vars {
		s.Set(name, value)
	}
}

// All returns a copy of the session contents.
func (s *Session) All() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Names returns the variable names in insertion order.
func (s *Session) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of stored variables.
func (s *Session) Len() int {
	return len(s.values)
}

// Source exposes the session as the highest-priority variable source.
func (s *Session) Source() types.VariableSource {
	return (*source)(s)
}

type source Session

func (src *source) Name() string { return "session" }

func (src *source) Priority() int { return Priority }

func (src *source) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := src.values[key]
	if !ok {
		return "", false, nil
	}
	return types.FormatValue(v), true, nil
}

// Export serializes the session as a flat JSON object. Script-produced
// scalars (strings, numbers, booleans, null) round-trip without loss;
// lists and maps serialize as JSON values.
func (s *Session) Export(path string) error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load merges a previously exported session file into this session.
func (s *Session) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}
	s.Merge(values)
	return nil
}
