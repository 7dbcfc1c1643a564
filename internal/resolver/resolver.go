// Package resolver substitutes {{name}} placeholders in request
// definitions from a ranked chain of variable sources, with recursive
// resolution, strict/lenient unresolved handling and built-in dynamic
// generators ($uuid, $timestamp, $isoTimestamp, $randomInt).
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"reqchain/internal/types"
)

// Variable placeholder pattern: {{varName}}
var varPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// DefaultMaxDepth bounds recursive resolution; indirect circular references
// (a -> {{b}}, b -> {{a}}) cannot terminate naturally and are caught here.
const DefaultMaxDepth = 10

// Options controls one resolution pass.
type Options struct {
	// Strict makes any unresolved placeholder an error naming every
	// unresolved variable found in the pass. Lenient (the default) leaves
	// the original {{name}} text in place and reports the names instead.
	Strict bool

	// MaxDepth bounds recursive resolution. Zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// UnresolvedError is returned in strict mode when placeholders remain
// after a full pass. Names are unique, in first-seen order.
type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved variables: %s", strings.Join(e.Names, ", "))
}

// DepthError indicates resolution exceeded the configured maximum depth,
// which almost always means a circular variable reference. It is fatal to
// the resolution call regardless of mode.
type DepthError struct {
	Name     string
	MaxDepth int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("variable %q: exceeded max resolution depth (%d), likely a circular reference", e.Name, e.MaxDepth)
}

// Resolver substitutes {{name}} placeholders using a ranked set of
// variable sources plus the built-in dynamic generators.
type Resolver struct {
	sources []types.VariableSource
}

// New creates a resolver over the given sources. Sources are sorted once,
// descending by priority; the sort is stable, so the order sources are
// supplied in is the tie-break between equal priorities.
func New(sources ...types.VariableSource) *Resolver {
	sorted := make([]types.VariableSource, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Resolver{sources: sorted}
}

// Result is the outcome of one top-level resolution call.
type Result struct {
	Value      string
	Unresolved []string // unique, first-seen order; empty in strict mode (strict errors instead)
}

// Resolve substitutes every placeholder in template. In strict mode an
// *UnresolvedError names every placeholder no source could satisfy; in
// lenient mode those placeholders stay verbatim and are listed in the
// result. A *DepthError is fatal in either mode.
func (r *Resolver) Resolve(ctx context.Context, template string, opts Options) (*Result, error) {
	st := &state{resolver: r, opts: opts}
	value, err := st.resolveString(ctx, template, opts.maxDepth())
	if err != nil {
		return nil, err
	}
	if opts.Strict && len(st.unresolved) > 0 {
		return nil, &UnresolvedError{Names: st.unresolved}
	}
	return &Result{Value: value, Unresolved: st.unresolved}, nil
}

// ResolveValue walks arbitrary nested data (maps, slices, primitives),
// applying string resolution to every string leaf and reconstructing the
// same shape. Non-string primitives pass through unchanged.
func (r *Resolver) ResolveValue(ctx context.Context, value any, opts Options) (any, []string, error) {
	st := &state{resolver: r, opts: opts}
	out, err := st.resolveValue(ctx, value, opts.maxDepth())
	if err != nil {
		return nil, nil, err
	}
	if opts.Strict && len(st.unresolved) > 0 {
		return nil, nil, &UnresolvedError{Names: st.unresolved}
	}
	return out, st.unresolved, nil
}

// state accumulates unresolved names across one top-level call so strict
// mode can report them all at once.
type state struct {
	resolver *Resolver
	opts     Options

	unresolved []string
	seen       map[string]bool
}

func (st *state) markUnresolved(name string) {
	if st.seen == nil {
		st.seen = make(map[string]bool)
	}
	if st.seen[name] {
		return
	}
	st.seen[name] = true
	st.unresolved = append(st.unresolved, name)
}

func (st *state) resolveString(ctx context.Context, input string, depth int) (string, error) {
	matches := varPattern.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return input, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(input[last:m[0]])
		name := strings.TrimSpace(input[m[2]:m[3]])

		replacement, ok, err := st.lookup(ctx, name, depth)
		if err != nil {
			return "", err
		}
		if ok {
			sb.WriteString(replacement)
		} else {
			st.markUnresolved(name)
			sb.WriteString(input[m[0]:m[1]]) // keep the placeholder verbatim
		}
		last = m[1]
	}
	sb.WriteString(input[last:])
	return sb.String(), nil
}

// lookup resolves a single placeholder name. Built-in dynamic names take
// precedence over source lookup and are recomputed per occurrence.
func (st *state) lookup(ctx context.Context, name string, depth int) (string, bool, error) {
	if strings.HasPrefix(name, "$") {
		if gen, ok := builtins[name]; ok {
			return gen(), true, nil
		}
		return "", false, nil
	}

	// The env. prefix is a naming convention used by some sources; it is
	// stripped before the lookup, the mechanism is unchanged.
	key := strings.TrimPrefix(name, "env.")

	for _, src := range st.resolver.sources {
		value, found, err := src.Get(ctx, key)
		if err != nil {
			return "", false, fmt.Errorf("source %s: lookup %q: %w", src.Name(), key, err)
		}
		if !found {
			continue
		}
		// A resolved value may itself contain placeholders.
		if varPattern.MatchString(value) {
			if depth <= 0 {
				return "", false, &DepthError{Name: name, MaxDepth: st.opts.maxDepth()}
			}
			nested, err := st.resolveString(ctx, value, depth-1)
			if err != nil {
				return "", false, err
			}
			return nested, true, nil
		}
		return value, true, nil
	}
	return "", false, nil
}

func (st *state) resolveValue(ctx context.Context, value any, depth int) (any, error) {
	switch v := value.(type) {
	case string:
		return st.resolveString(ctx, v, depth)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := st.resolveValue(ctx, item, depth)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := st.resolveValue(ctx, item, depth)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		// Numbers, booleans, nil pass through unchanged.
		return v, nil
	}
}

// ExtractNames returns the unique placeholder names in a string, without
// the surrounding braces, in first-seen order.
func ExtractNames(input string) []string {
	matches := varPattern.FindAllStringSubmatch(input, -1)
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
