package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"reqchain/internal/types"
)

// encodeBody prepares the request body according to the definition's
// format tag and returns the reader, the implied content type (empty when
// the caller should not set one) and the encoded size.
func encodeBody(req *types.ResolvedRequest) (io.Reader, string, int, error) {
	if req.Body == "" {
		return nil, "", 0, nil
	}

	switch req.BodyFormat {
	case types.BodyForm:
		encoded, err := encodeForm(req.Body)
		if err != nil {
			return nil, "", 0, err
		}
		return strings.NewReader(encoded), "application/x-www-form-urlencoded", len(encoded), nil

	case types.BodyGraphQL:
		encoded, err := encodeGraphQL(req.Body)
		if err != nil {
			return nil, "", 0, err
		}
		return bytes.NewReader(encoded), "application/json", len(encoded), nil

	case types.BodyMultipart:
		buf, contentType, err := encodeMultipart(req.Body)
		if err != nil {
			return nil, "", 0, err
		}
		return buf, contentType, buf.Len(), nil

	case types.BodyJSON:
		return strings.NewReader(req.Body), "application/json", len(req.Body), nil

	case types.BodyRaw, "":
		return strings.NewReader(req.Body), "", len(req.Body), nil

	default:
		return nil, "", 0, fmt.Errorf("unknown body format %q", req.BodyFormat)
	}
}

// encodeForm url-encodes key=value pairs given one per line (or joined
// with &).
func encodeForm(body string) (string, error) {
	values := url.Values{}
	for _, pair := range splitPairs(body) {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return "", fmt.Errorf("form body line %q is not key=value", pair)
		}
		values.Add(strings.TrimSpace(key), value)
	}
	return values.Encode(), nil
}

// encodeGraphQL wraps a bare query in the standard GraphQL POST envelope.
// A body that is already a JSON object with a "query" member passes
// through unchanged.
func encodeGraphQL(body string) ([]byte, error) {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") {
		var probe map[string]any
		if err := json.Unmarshal([]byte(trimmed), &probe); err == nil {
			if _, ok := probe["query"]; ok {
				return []byte(trimmed), nil
			}
		}
	}
	return json.Marshal(map[string]any{
		"query":     body,
		"variables": map[string]any{},
	})
}

// encodeMultipart assembles a multipart form from name=value lines;
// a value of the form @path attaches the file at path.
func encodeMultipart(body string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, pair := range splitPairs(body) {
		name, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, "", fmt.Errorf("multipart body line %q is not name=value", pair)
		}
		name = strings.TrimSpace(name)

		if strings.HasPrefix(value, "@") {
			path := value[1:]
			file, err := os.Open(path)
			if err != nil {
				return nil, "", fmt.Errorf("failed to open multipart file: %w", err)
			}
			part, err := w.CreateFormFile(name, filepath.Base(path))
			if err == nil {
				_, err = io.Copy(part, file)
			}
			file.Close()
			if err != nil {
				return nil, "", fmt.Errorf("failed to write multipart file %s: %w", path, err)
			}
			continue
		}

		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write multipart field %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func splitPairs(body string) []string {
	var pairs []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, pair := range strings.Split(line, "&") {
			if pair != "" {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}
