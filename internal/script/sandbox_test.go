package script

import (
	"os"
	"strings"
	"testing"
	"time"

	"reqchain/internal/types"
)

func newSandbox(t *testing.T) *Sandbox {
	t.Helper()
	return New(Config{Timeout: 2 * time.Second, Env: map[string]string{"API_KEY": "k-123"}})
}

func TestRunPre_SetAndGetVariable(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`
		rc.setVariable("token", "T1");
		rc.setVariable("token", "T2");
		rc.log(rc.getVariable("token"));
	`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	if res.Variables["token"] != "T2" {
		t.Errorf("last write must win, got %v", res.Variables["token"])
	}
	if len(res.Logs) != 1 || res.Logs[0] != "T2" {
		t.Errorf("expected log [T2], got %v", res.Logs)
	}
}

func TestReset_SeedsVariables(t *testing.T) {
	s := newSandbox(t)
	s.Reset(map[string]any{"token": "seeded"})

	res := s.RunPre(`rc.log(rc.getVariable("token"));`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	if res.Logs[0] != "seeded" {
		t.Errorf("expected seeded value, got %v", res.Logs)
	}
	// Seeded values are not writes of this execution.
	if len(res.Variables) != 0 {
		t.Errorf("seed must not appear in written variables: %v", res.Variables)
	}
}

func TestVariablesPersistAcrossPreAndPost(t *testing.T) {
	s := newSandbox(t)
	s.Reset(nil)

	if res := s.RunPre(`rc.setVariable("id", 7);`); !res.Success {
		t.Fatalf("pre failed: %s", res.Error)
	}
	resp := &types.Response{Status: 200, StatusText: "200 OK", Body: "{}"}
	post := s.RunPost(`rc.log(rc.getVariable("id"));`, resp)
	if !post.Success {
		t.Fatalf("post failed: %s", post.Error)
	}
	if post.Logs[0] != "7" {
		t.Errorf("expected pre-written variable visible to post, got %v", post.Logs)
	}
}

func TestGetEnv_SnapshotOnly(t *testing.T) {
	os.Setenv("REQCHAIN_TEST_LEAK", "secret")
	defer os.Unsetenv("REQCHAIN_TEST_LEAK")

	s := newSandbox(t)
	res := s.RunPre(`
		rc.log(typeof rc.getEnv("REQCHAIN_TEST_LEAK"));
		rc.log(rc.getEnv("API_KEY"));
	`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	if res.Logs[0] != "undefined" {
		t.Errorf("live process env must not be visible, got %q", res.Logs[0])
	}
	if res.Logs[1] != "k-123" {
		t.Errorf("snapshot value missing, got %q", res.Logs[1])
	}
}

func TestHostCapabilitiesAreUndefined(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`
		rc.log(typeof require);
		rc.log(typeof process);
		rc.log(typeof fetch);
		rc.log(typeof setTimeout);
		rc.log(typeof XMLHttpRequest);
	`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	for i, line := range res.Logs {
		if line != "undefined" {
			t.Errorf("capability %d leaked into the sandbox: %q", i, line)
		}
	}
}

func TestTimeout_PreemptsInfiniteLoop(t *testing.T) {
	s := New(Config{Timeout: 100 * time.Millisecond})
	start := time.Now()
	res := s.RunPre(`
		rc.log("before");
		rc.setVariable("partial", true);
		while (true) {}
	`)
	elapsed := time.Since(start)

	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(res.Error, "timed out") {
		t.Errorf("expected timeout-shaped error, got %q", res.Error)
	}
	if elapsed > 2*time.Second {
		t.Errorf("loop was not preempted promptly: %v", elapsed)
	}
	if len(res.Logs) != 1 || res.Logs[0] != "before" {
		t.Errorf("logs recorded before termination must survive, got %v", res.Logs)
	}
	if res.Variables["partial"] != true {
		t.Errorf("variables recorded before termination must survive, got %v", res.Variables)
	}
}

func TestError_PartialResultsPreserved(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`
		rc.log("step 1");
		rc.setVariable("done", "partly");
		rc.expect(1).toBe(1);
		throw new Error("boom");
	`)
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "boom") {
		t.Errorf("expected error message captured, got %q", res.Error)
	}
	if len(res.Logs) != 1 || res.Variables["done"] != "partly" || len(res.Assertions) != 1 {
		t.Errorf("partial results discarded: logs=%v vars=%v asserts=%v", res.Logs, res.Variables, res.Assertions)
	}
}

func TestConsoleCapturedInOrder(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`
		console.log("one");
		rc.log("two", {"a": 1});
		console.error("three");
	`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	want := []string{"one", `two {"a":1}`, "three"}
	if len(res.Logs) != len(want) {
		t.Fatalf("expected %d log lines, got %v", len(want), res.Logs)
	}
	for i := range want {
		if res.Logs[i] != want[i] {
			t.Errorf("log %d: got %q, want %q", i, res.Logs[i], want[i])
		}
	}
}

func TestExpect_ToBe(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`
		rc.expect(5).toBe(5);
		rc.expect("a").toBe("b");
		rc.expect(NaN).toBe(NaN);
		rc.expect(0).toBe(-0);
		rc.expect(1).not.toBe(2);
	`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	wantPassed := []bool{true, false, false, true, true}
	if len(res.Assertions) != len(wantPassed) {
		t.Fatalf("expected %d outcomes, got %d", len(wantPassed), len(res.Assertions))
	}
	for i, want := range wantPassed {
		if res.Assertions[i].Passed != want {
			t.Errorf("assertion %d: passed=%v, want %v (%s)", i, res.Assertions[i].Passed, want, res.Assertions[i].Message)
		}
	}
}

func TestExpect_ToEqualDeep(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`
		rc.expect({a: 1, b: [1, 2]}).toEqual({a: 1, b: [1, 2]});
		rc.expect({a: 1}).toEqual({a: 2});
	`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	if !res.Assertions[0].Passed || res.Assertions[1].Passed {
		t.Errorf("deep equality outcomes wrong: %+v", res.Assertions)
	}
}

func TestExpect_ToContain(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`
		rc.expect("hello world").toContain("world");
		rc.expect([1, 2, 3]).toContain(2);
		rc.expect([1, 2, 3]).toContain(9);
	`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	want := []bool{true, true, false}
	for i, w := range want {
		if res.Assertions[i].Passed != w {
			t.Errorf("assertion %d: %+v", i, res.Assertions[i])
		}
	}
}

func TestExpect_ComparisonsAndMatch(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`
		rc.expect(10).toBeGreaterThan(5);
		rc.expect(10).toBeLessThan(5);
		rc.expect("abc-123").toMatch("^abc-\\d+$");
		rc.expect(null).toBeNull();
		rc.expect("").toBeTruthy();
	`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	want := []bool{true, false, true, true, false}
	for i, w := range want {
		if res.Assertions[i].Passed != w {
			t.Errorf("assertion %d: %+v", i, res.Assertions[i])
		}
	}
}

func TestRunPost_ResponseView(t *testing.T) {
	s := newSandbox(t)
	resp := &types.Response{
		Status:     201,
		StatusText: "201 Created",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"id": 42, "name": "alice"}`,
	}
	res := s.RunPost(`
		rc.expect(response.status).toBe(201);
		rc.expect(response.headers["Content-Type"]).toContain("json");
		var body = response.json();
		rc.expect(body.id).toBe(42);
		rc.setVariable("userName", body.name);
	`, resp)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	for i, a := range res.Assertions {
		if !a.Passed {
			t.Errorf("assertion %d failed: %s", i, a.Message)
		}
	}
	if res.Variables["userName"] != "alice" {
		t.Errorf("expected userName=alice, got %v", res.Variables)
	}
}

func TestRunPost_InvalidJSONIsScriptVisible(t *testing.T) {
	s := newSandbox(t)
	resp := &types.Response{Status: 200, StatusText: "200 OK", Body: "<html>not json</html>"}
	res := s.RunPost(`
		try {
			response.json();
			rc.log("no error");
		} catch (e) {
			rc.log("caught: " + e.message);
		}
	`, resp)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	if len(res.Logs) != 1 || !strings.Contains(res.Logs[0], "caught:") {
		t.Errorf("json() on invalid body must throw a catchable error, got %v", res.Logs)
	}
}

func TestRunPre_NoResponseBinding(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre(`rc.log(typeof response);`)
	if !res.Success {
		t.Fatalf("script failed: %s", res.Error)
	}
	if res.Logs[0] != "undefined" {
		t.Errorf("pre scripts must not see a response, got %q", res.Logs[0])
	}
}

func TestEmptyScriptSucceeds(t *testing.T) {
	s := newSandbox(t)
	res := s.RunPre("   \n  ")
	if !res.Success || res.Error != "" {
		t.Errorf("empty script must succeed: %+v", res)
	}
}
