package executor

import (
	"fmt"
	"net/http"

	"reqchain/internal/types"
)

// applyAuth attaches the request's auth descriptor. Explicit headers set
// on the definition are not overridden.
func applyAuth(httpReq *http.Request, auth *types.AuthConfig) error {
	if auth == nil || auth.Kind == "" || auth.Kind == types.AuthNone {
		return nil
	}

	switch auth.Kind {
	case types.AuthBearer:
		if httpReq.Header.Get("Authorization") == "" {
			httpReq.Header.Set("Authorization", "Bearer "+auth.Token)
		}

	case types.AuthBasic:
		if httpReq.Header.Get("Authorization") == "" {
			httpReq.SetBasicAuth(auth.Username, auth.Password)
		}

	case types.AuthAPIKey:
		if auth.In == "query" {
			q := httpReq.URL.Query()
			q.Set(auth.Key, auth.Value)
			httpReq.URL.RawQuery = q.Encode()
		} else {
			httpReq.Header.Set(auth.Key, auth.Value)
		}

	default:
		return fmt.Errorf("unknown auth kind %q", auth.Kind)
	}
	return nil
}
