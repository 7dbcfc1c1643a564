// Package runner sequences one request execution:
// Resolve -> PreScript -> Transport -> PostScript -> Done. Script-written
// variables merge into the run's session after each script phase, which
// is the entire chaining mechanism: a later request's resolution observes
// what an earlier request's scripts wrote.
package runner

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"reqchain/internal/executor"
	"reqchain/internal/extract"
	"reqchain/internal/history"
	"reqchain/internal/resolver"
	"reqchain/internal/script"
	"reqchain/internal/session"
	"reqchain/internal/types"
)

// Options configures a Runner for one run.
type Options struct {
	// Strict makes unresolved placeholders fatal to the request.
	Strict bool

	// MaxDepth bounds recursive variable resolution (0 = default).
	MaxDepth int

	// ScriptTimeout bounds each script execution (0 = script default).
	ScriptTimeout time.Duration

	// HTTPTimeout bounds each network call (0 = executor default).
	HTTPTimeout time.Duration

	// Sources are the external variable sources (profile, environment,
	// CLI overrides). The session is appended internally as the
	// highest-priority source.
	Sources []types.VariableSource

	// Env is the immutable environment snapshot scripts read via
	// rc.getEnv.
	Env map[string]string

	// History, when non-nil, records every executed request. Persistence
	// failures are logged, never fatal.
	History *history.Manager

	Logger zerolog.Logger
}

// Runner owns one run: one session, one sandbox, strictly sequential
// request execution.
type Runner struct {
	opts    Options
	session *session.Session
	sandbox *script.Sandbox
	log     zerolog.Logger
}

// New creates a runner with a fresh session.
func New(opts Options) *Runner {
	return &Runner{
		opts:    opts,
		session: session.New(),
		sandbox: script.New(script.Config{Timeout: opts.ScriptTimeout, Env: opts.Env}),
		log:     opts.Logger,
	}
}

// Session returns the run's session, for seeding and export.
func (r *Runner) Session() *session.Session {
	return r.session
}

// Execute runs the state machine for one definition and always returns a
// response: script and resolution failures surface as a synthetic
// status-0 response so batch runs can continue uniformly.
//
// Ordering note: the request is resolved once, before the pre script
// runs. Pre-script variable writes therefore never affect the current
// request's own URL, headers or body; they reach the session and are
// visible to every later request.
func (r *Runner) Execute(ctx context.Context, def *types.RequestDefinition) *types.Response {
	// Seed the sandbox with current session contents so pre scripts can
	// read previously chained values. The sandbox variable map is
	// per-request; only explicit writes flow back into the session.
	r.sandbox.Reset(r.session.All())

	sources := make([]types.VariableSource, 0, len(r.opts.Sources)+1)
	sources = append(sources, r.opts.Sources...)
	sources = append(sources, r.session.Source())

	res := resolver.New(sources...)
	opts := resolver.Options{Strict: r.opts.Strict, MaxDepth: r.opts.MaxDepth}

	r.log.Debug().Str("request", def.Name).Msg("resolving")
	resolved, unresolved, err := res.ResolveRequest(ctx, def, opts)
	if err != nil {
		r.log.Warn().Str("request", def.Name).Err(err).Msg("resolution failed")
		return errorResponse(def, err.Error())
	}
	if len(unresolved) > 0 {
		r.log.Warn().Str("request", def.Name).Strs("variables", unresolved).Msg("unresolved variables left verbatim")
	}

	var logs []string
	var assertions []types.AssertionOutcome

	if def.PreScript != "" {
		r.log.Debug().Str("request", def.Name).Msg("running pre script")
		pre := r.sandbox.RunPre(def.PreScript)
		logs = append(logs, pre.Logs...)
		assertions = append(assertions, pre.Assertions...)
		if !pre.Success {
			r.log.Warn().Str("request", def.Name).Str("error", pre.Error).Msg("pre script failed, skipping transport")
			resp := errorResponse(def, pre.Error)
			resp.Logs = logs
			resp.Assertions = assertions
			return resp
		}
		// Merged before the network call: visible to later requests, not
		// to this request's own interpolation (see ordering note above).
		r.session.Merge(pre.Variables)
	}

	r.log.Debug().Str("request", def.Name).Str("method", resolved.Method).Str("url", resolved.URL).Msg("executing")
	resp := executor.Execute(ctx, resolved, r.opts.HTTPTimeout)

	if len(resolved.Extract) > 0 && resp.Status != 0 {
		vars, err := extract.Variables(resolved.Extract, resp.Body)
		if err != nil {
			r.log.Warn().Str("request", def.Name).Err(err).Msg("extraction failed")
		} else {
			r.session.Merge(vars)
		}
	}

	// Auth token capture: a successful JSON response carrying a token
	// field seeds {{token}} for the rest of the chain.
	if executor.IsSuccessStatus(resp.Status) {
		for _, key := range []string{"access_token", "token"} {
			if tok, ok := extract.Token(resp.Body, key); ok {
				r.session.Set("token", tok)
				break
			}
		}
	}

	if def.PostScript != "" {
		r.log.Debug().Str("request", def.Name).Msg("running post script")
		post := r.sandbox.RunPost(def.PostScript, resp)
		r.session.Merge(post.Variables)
		logs = append(logs, post.Logs...)
		assertions = append(assertions, post.Assertions...)
		if !post.Success {
			// Non-fatal: the HTTP exchange already happened, discarding
			// the response would lose real data.
			resp.ScriptError = post.Error
			r.log.Warn().Str("request", def.Name).Str("error", post.Error).Msg("post script failed, response preserved")
		}
	}

	resp.Logs = logs
	resp.Assertions = assertions
	return resp
}

// Failed reports whether a response counts as a failure: transport or
// pre-script failure (status 0), an HTTP error status, or any failed
// assertion outcome.
func Failed(resp *types.Response) bool {
	if resp.Status == 0 || resp.Status >= 400 {
		return true
	}
	for _, a := range resp.Assertions {
		if !a.Passed {
			return true
		}
	}
	return false
}

func errorResponse(def *types.RequestDefinition, message string) *types.Response {
	echo := types.ResolvedRequest{
		Name:   def.Name,
		Method: def.Method,
		URL:    def.URL,
	}
	return &types.Response{
		Status:     0,
		StatusText: "Error",
		Body:       message,
		Request:    &echo,
	}
}
