package extract

import (
	"strings"
	"testing"
)

const body = `{
	"data": {
		"user": {"id": 42, "name": "alice", "admin": true},
		"items": [{"sku": "a-1"}, {"sku": "b-2"}]
	},
	"access_token": "tok-123"
}`

func TestVariables(t *testing.T) {
	vars, err := Variables(map[string]string{
		"userId":   "data.user.id",
		"userName": "data.user.name",
		"isAdmin":  "data.user.admin",
		"firstSku": "data.items[0].sku",
	}, body)
	if err != nil {
		t.Fatalf("Variables failed: %v", err)
	}

	if vars["userId"] != float64(42) {
		t.Errorf("userId: %T(%v)", vars["userId"], vars["userId"])
	}
	if vars["userName"] != "alice" {
		t.Errorf("userName: %v", vars["userName"])
	}
	if vars["isAdmin"] != true {
		t.Errorf("isAdmin: %v", vars["isAdmin"])
	}
	if vars["firstSku"] != "a-1" {
		t.Errorf("firstSku: %v", vars["firstSku"])
	}
}

func TestVariables_EmptyRules(t *testing.T) {
	vars, err := Variables(nil, body)
	if err != nil || vars != nil {
		t.Errorf("expected nil/nil for empty rules, got %v, %v", vars, err)
	}
}

func TestVariables_NonJSONBody(t *testing.T) {
	_, err := Variables(map[string]string{"x": "a"}, "<html></html>")
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Errorf("expected JSON error, got %v", err)
	}
}

func TestVariables_NullPath(t *testing.T) {
	_, err := Variables(map[string]string{"x": "data.missing"}, body)
	if err == nil || !strings.Contains(err.Error(), "returned null") {
		t.Errorf("expected null-path error, got %v", err)
	}
}

func TestToken(t *testing.T) {
	tok, ok := Token(body, "access_token")
	if !ok || tok != "tok-123" {
		t.Errorf("expected tok-123, got %q (ok=%v)", tok, ok)
	}

	if _, ok := Token(body, "refresh_token"); ok {
		t.Error("absent token must not be found")
	}
	if _, ok := Token("not json", "access_token"); ok {
		t.Error("invalid JSON must not yield a token")
	}
	if _, ok := Token(`{"access_token": 99}`, "access_token"); ok {
		t.Error("non-string token must not be captured")
	}
}
