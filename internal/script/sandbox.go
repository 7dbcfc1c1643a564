// Package script executes user-supplied pre/post request scripts in an
// isolated JavaScript environment. The executable scope exposes only the
// rc control object, console capture, and (for post scripts) a read-only
// response view; host capabilities such as require, the filesystem, the
// network stack and timers are simply not bound, so referencing them
// evaluates to undefined.
package script

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"reqchain/internal/types"
)

// DefaultTimeout bounds a single script execution.
const DefaultTimeout = 5 * time.Second

// Config configures a sandbox for one run.
type Config struct {
	// Timeout is the wall-clock limit per execution. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// Env is the immutable environment snapshot rc.getEnv reads from.
	// Scripts never see the live process environment.
	Env map[string]string
}

// Sandbox executes scripts and captures their logs, variable writes and
// assertion outcomes. The variable map persists across the pre and post
// script of one request and is reset by the orchestrator between
// requests.
type Sandbox struct {
	timeout time.Duration
	env     map[string]string
	vars    map[string]any
}

// New creates a sandbox. The env map is copied so later mutation by the
// caller cannot leak into scripts.
func New(cfg Config) *Sandbox {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	env := make(map[string]string, len(cfg.Env))
	for k, v := range cfg.Env {
		env[k] = v
	}
	return &Sandbox{
		timeout: timeout,
		env:     env,
		vars:    make(map[string]any),
	}
}

// Reset discards the sandbox variable map and seeds it from vars,
// typically the current session contents, so pre scripts can read
// previously chained values.
func (s *Sandbox) Reset(vars map[string]any) {
	s.vars = make(map[string]any, len(vars))
	for k, v := range vars {
		s.vars[k] = types.NormalizeValue(v)
	}
}

// RunPre executes a pre-request script. No response is available.
func (s *Sandbox) RunPre(src string) *types.ScriptResult {
	return s.run(src, nil)
}

// RunPost executes a post-request script with a read-only view of resp.
func (s *Sandbox) RunPost(src string, resp *types.Response) *types.ScriptResult {
	return s.run(src, resp)
}

func (s *Sandbox) run(src string, resp *types.Response) *types.ScriptResult {
	res := &types.ScriptResult{
		Success:   true,
		Variables: make(map[string]any),
	}
	if strings.TrimSpace(src) == "" {
		return res
	}

	vm := goja.New()
	s.bind(vm, res, resp)

	timer := time.AfterFunc(s.timeout, func() {
		vm.Interrupt("timeout")
	})
	defer timer.Stop()

	_, err := vm.RunString(src)
	if err != nil {
		// Everything recorded before the failure point is preserved.
		res.Success = false
		var interrupted *goja.InterruptedError
		var exception *goja.Exception
		switch {
		case errors.As(err, &interrupted):
			res.Error = fmt.Sprintf("script timed out after %s", s.timeout)
		case errors.As(err, &exception):
			res.Error = exception.Value().String()
		default:
			res.Error = err.Error()
		}
	}
	return res
}
