package resolver

import (
	"context"

	"reqchain/internal/types"
)

// ResolveRequest resolves every templated field of a definition (URL,
// headers, body, auth material) in one pass, so strict mode reports all
// unresolved placeholders of the request together. The returned request
// is a fresh value; the definition is never mutated.
func (r *Resolver) ResolveRequest(ctx context.Context, def *types.RequestDefinition, opts Options) (*types.ResolvedRequest, []string, error) {
	st := &state{resolver: r, opts: opts}
	depth := opts.maxDepth()

	resolved := types.ResolvedRequest{
		Name:       def.Name,
		Kind:       def.Kind,
		Schema:     def.Schema,
		Method:     def.Method,
		BodyFormat: def.BodyFormat,
		TLS:        def.TLS,
		Extract:    def.Extract,
		PreScript:  def.PreScript,
		PostScript: def.PostScript,
	}

	var err error
	if resolved.URL, err = st.resolveString(ctx, def.URL, depth); err != nil {
		return nil, nil, err
	}

	if len(def.Headers) > 0 {
		resolved.Headers = make(map[string]string, len(def.Headers))
		for k, v := range def.Headers {
			value, err := st.resolveString(ctx, v, depth)
			if err != nil {
				return nil, nil, err
			}
			resolved.Headers[k] = value
		}
	}

	if resolved.Body, err = st.resolveString(ctx, def.Body, depth); err != nil {
		return nil, nil, err
	}

	if def.Auth != nil {
		auth := *def.Auth
		for _, field := range []*string{&auth.Token, &auth.Username, &auth.Password, &auth.Key, &auth.Value} {
			if *field == "" {
				continue
			}
			if *field, err = st.resolveString(ctx, *field, depth); err != nil {
				return nil, nil, err
			}
		}
		resolved.Auth = &auth
	}

	if opts.Strict && len(st.unresolved) > 0 {
		return nil, nil, &UnresolvedError{Names: st.unresolved}
	}
	return &resolved, st.unresolved, nil
}
