package output

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"reqchain/internal/runner"
	"reqchain/internal/types"
)

type maskAll struct{}

func (maskAll) MaskSecrets(text string) string {
	return strings.ReplaceAll(text, "hunter2", "****")
}

func sampleResponse() *types.Response {
	return &types.Response{
		Status:     200,
		StatusText: "200 OK",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"password": "hunter2"}`,
		Duration:   12,
		Logs:       []string{"checking auth"},
		Assertions: []types.AssertionOutcome{
			{Passed: true, Message: "expected 200 to be 200"},
			{Passed: false, Message: "expected 1 to be 2"},
		},
	}
}

func TestFormat_Body(t *testing.T) {
	out, err := Format(sampleResponse(), "body", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"password": "hunter2"}` {
		t.Errorf("body format must be the raw body, got %q", out)
	}
}

func TestFormat_JSONRoundTrips(t *testing.T) {
	out, err := Format(sampleResponse(), "json", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("json output must be valid JSON: %v", err)
	}
	if decoded["status"] != float64(200) {
		t.Errorf("status = %v", decoded["status"])
	}
}

func TestFormat_Text(t *testing.T) {
	out, err := Format(sampleResponse(), "text", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"200 OK", "checking auth", "PASS", "FAIL", "expected 1 to be 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Content-Type") {
		t.Error("headers must be hidden without full")
	}

	out, err = Format(sampleResponse(), "text", true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Content-Type") {
		t.Error("full output must include headers")
	}
}

func TestFormat_Masking(t *testing.T) {
	for _, format := range []string{"text", "json", "yaml", "body"} {
		out, err := Format(sampleResponse(), format, false, maskAll{})
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if strings.Contains(out, "hunter2") {
			t.Errorf("%s output leaked a secret:\n%s", format, out)
		}
	}
}

func TestSummary(t *testing.T) {
	results := []*runner.FileResult{
		{File: "/tmp/01-login.yaml", Responses: []*types.Response{{Status: 200}}},
		{File: "/tmp/02-bad.yaml", Responses: []*types.Response{{Status: 500, StatusText: "500 Internal Server Error"}}},
		{File: "/tmp/03-broken.yaml", Err: errors.New("missing url")},
	}

	out := Summary(results)
	if !strings.Contains(out, "PASS") || !strings.Contains(out, "01-login.yaml") {
		t.Errorf("missing pass line:\n%s", out)
	}
	if !strings.Contains(out, "500 Internal Server Error") {
		t.Errorf("failure reason missing:\n%s", out)
	}
	if !strings.Contains(out, "missing url") {
		t.Errorf("parse error reason missing:\n%s", out)
	}
	if !strings.Contains(out, "1/3 files passed") {
		t.Errorf("aggregate line wrong:\n%s", out)
	}
}
