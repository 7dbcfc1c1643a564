package script

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"reqchain/internal/types"
)

// bind installs the rc control object, console capture and, when resp is
// non-nil, the read-only response view into a fresh runtime.
func (s *Sandbox) bind(vm *goja.Runtime, res *types.ScriptResult, resp *types.Response) {
	rc := vm.NewObject()

	rc.Set("getVariable", func(name string) goja.Value {
		if v, ok := s.vars[name]; ok {
			return vm.ToValue(v)
		}
		return goja.Undefined()
	})

	rc.Set("setVariable", func(name string, value goja.Value) {
		normalized := types.NormalizeValue(value.Export())
		s.vars[name] = normalized
		res.Variables[name] = normalized // last write per name wins
	})

	rc.Set("getEnv", func(name string) goja.Value {
		if v, ok := s.env[name]; ok {
			return vm.ToValue(v)
		}
		return goja.Undefined()
	})

	rc.Set("uuid", func() string {
		return uuid.NewString()
	})

	rc.Set("timestamp", func() int64 {
		return time.Now().UnixMilli()
	})

	logFn := func(call goja.FunctionCall) goja.Value {
		res.Logs = append(res.Logs, formatLogArgs(call.Arguments))
		return goja.Undefined()
	}
	rc.Set("log", logFn)

	rc.Set("expect", func(actual goja.Value) *goja.Object {
		return s.makeExpect(vm, res, actual, false)
	})

	vm.Set("rc", rc)

	// console output is captured into the result, never written to the
	// process's stdout.
	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		console.Set(level, logFn)
	}
	vm.Set("console", console)

	if resp != nil {
		vm.Set("response", s.makeResponse(vm, resp))
	}
}

// makeResponse builds the script-visible response view. json() parses the
// body lazily, caches the result, and throws a script-visible error when
// the body is not valid JSON.
func (s *Sandbox) makeResponse(vm *goja.Runtime, resp *types.Response) *goja.Object {
	obj := vm.NewObject()
	obj.Set("status", resp.Status)
	obj.Set("statusText", resp.StatusText)

	headers := make(map[string]string, len(resp.Headers))
	for k, v := range resp.Headers {
		headers[k] = v
	}
	obj.Set("headers", headers)
	obj.Set("body", resp.Body)

	var cached goja.Value
	obj.Set("json", func() goja.Value {
		if cached != nil {
			return cached
		}
		var parsed any
		if err := json.Unmarshal([]byte(resp.Body), &parsed); err != nil {
			panic(vm.NewGoError(fmt.Errorf("response body is not valid JSON: %w", err)))
		}
		cached = vm.ToValue(parsed)
		return cached
	})

	return obj
}

// formatLogArgs renders log arguments the way a console would: strings
// verbatim, everything else as JSON where possible.
func formatLogArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = describe(arg)
	}
	return strings.Join(parts, " ")
}

func describe(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	exported := v.Export()
	if s, ok := exported.(string); ok {
		return s
	}
	if data, err := json.Marshal(exported); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", exported)
}
