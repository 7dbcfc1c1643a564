package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoad_WithComments(t *testing.T) {
	path := writeProfiles(t, `[
	// development profile
	{
		"name": "dev",
		"headers": {"X-Env": "dev"},
		"variables": {
			"baseUrl": "http://localhost:3000",
			"apiKey": {"value": "k-123", "secret": true}
		}
	}
]`)

	profiles, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "dev" {
		t.Fatalf("unexpected profiles: %+v", profiles)
	}

	p := profiles[0]
	if p.Variables["baseUrl"].Value != "http://localhost:3000" || p.Variables["baseUrl"].Secret {
		t.Errorf("bare string variable: %+v", p.Variables["baseUrl"])
	}
	if p.Variables["apiKey"].Value != "k-123" || !p.Variables["apiKey"].Secret {
		t.Errorf("object variable: %+v", p.Variables["apiKey"])
	}
}

func TestFind(t *testing.T) {
	profiles := []Profile{{Name: "dev"}, {Name: "prod"}}

	p, err := Find(profiles, "prod")
	if err != nil || p.Name != "prod" {
		t.Errorf("Find(prod) = %v, %v", p, err)
	}
	if _, err := Find(profiles, "staging"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestSource(t *testing.T) {
	p := &Profile{
		Name:      "dev",
		Variables: map[string]Variable{"host": {Value: "example.com"}},
	}
	src := p.Source()

	if src.Priority() != Priority {
		t.Errorf("priority: %d", src.Priority())
	}
	v, found, err := src.Get(context.Background(), "host")
	if err != nil || !found || v != "example.com" {
		t.Errorf("Get(host) = %q, %v, %v", v, found, err)
	}
	if _, found, _ := src.Get(context.Background(), "absent"); found {
		t.Error("absent key must not be found")
	}
}

func TestMaskSecrets(t *testing.T) {
	p := &Profile{
		Variables: map[string]Variable{
			"apiKey": {Value: "k-123", Secret: true},
			"host":   {Value: "example.com"},
		},
	}

	masked := p.MaskSecrets("key=k-123 host=example.com")
	if masked != "key=**** host=example.com" {
		t.Errorf("masking wrong: %q", masked)
	}

	var nilProfile *Profile
	if nilProfile.MaskSecrets("text") != "text" {
		t.Error("nil profile must pass text through")
	}
}
