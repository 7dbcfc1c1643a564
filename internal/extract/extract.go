// Package extract pulls variables out of response bodies so later
// requests in a chain can interpolate them without a post script.
package extract

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
	"github.com/tidwall/gjson"

	"reqchain/internal/types"
)

// Variables evaluates a definition's extract block (variable name to
// JMESPath expression) against the response body.
func Variables(rules map[string]string, responseBody string) (map[string]any, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	var jsonData any
	if err := json.Unmarshal([]byte(responseBody), &jsonData); err != nil {
		return nil, fmt.Errorf("cannot extract variables: response is not valid JSON")
	}

	extracted := make(map[string]any, len(rules))
	for varName, path := range rules {
		result, err := jmespath.Search(path, jsonData)
		if err != nil {
			return nil, fmt.Errorf("failed to extract variable %s using path %s: %w", varName, path, err)
		}
		if result == nil {
			return nil, fmt.Errorf("variable %s: path %s returned null", varName, path)
		}
		extracted[varName] = types.NormalizeValue(result)
	}
	return extracted, nil
}

// Token fetches a string value at a dotted key path from a JSON body.
// Used for the automatic auth-token capture after successful responses.
func Token(body, path string) (string, bool) {
	if !gjson.Valid(body) {
		return "", false
	}
	result := gjson.Get(body, path)
	if !result.Exists() || result.Type != gjson.String || result.Str == "" {
		return "", false
	}
	return result.Str, true
}
