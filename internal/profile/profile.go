// Package profile loads named variable profiles and exposes them as a
// low-priority variable source. Profile files are JSON with comments
// allowed.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"reqchain/internal/types"
)

// Priority ranks profile values below session, CLI and environment
// sources; a profile is the fallback, not the override.
const Priority = 100

// Variable is one profile value. Secret values are masked in all
// presentation output.
type Variable struct {
	Value  string `json:"value"`
	Secret bool   `json:"secret,omitempty"`
}

// UnmarshalJSON accepts either a bare string or the full object form.
func (v *Variable) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Value = s
		v.Secret = false
		return nil
	}
	type alias Variable
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = Variable(a)
	return nil
}

// Profile is a named set of default headers and variables.
type Profile struct {
	Name      string              `json:"name"`
	Headers   map[string]string   `json:"headers,omitempty"`
	Variables map[string]Variable `json:"variables,omitempty"`
	Output    string              `json:"output,omitempty"` // text, json, yaml
}

// Load reads a profiles file (a JSON array, comments allowed).
func Load(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var profiles []Profile
	if err := json.Unmarshal(jsonc.ToJSON(data), &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	for i := range profiles {
		if profiles[i].Headers == nil {
			profiles[i].Headers = make(map[string]string)
		}
		if profiles[i].Variables == nil {
			profiles[i].Variables = make(map[string]Variable)
		}
	}
	return profiles, nil
}

// Find returns the named profile.
func Find(profiles []Profile, name string) (*Profile, error) {
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile not found: %s", name)
}

// Source exposes the profile's variables for resolution.
func (p *Profile) Source() types.VariableSource {
	return &source{profile: p}
}

type source struct {
	profile *Profile
}

func (s *source) Name() string { return "profile:" + s.profile.Name }

func (s *source) Priority() int { return Priority }

func (s *source) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.profile.Variables[key]
	if !ok {
		return "", false, nil
	}
	return v.Value, true, nil
}

// MaskSecrets replaces every secret variable value appearing in text with
// asterisks. Used only by the presentation layer; the pipeline itself
// always works with real values.
func (p *Profile) MaskSecrets(text string) string {
	if p == nil {
		return text
	}
	for _, v := range p.Variables {
		if v.Secret && v.Value != "" {
			text = strings.ReplaceAll(text, v.Value, "****")
		}
	}
	return text
}
