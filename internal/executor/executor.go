// Package executor is the network transport. Its single contract is that
// Execute never raises for HTTP-level failures: timeouts, refused
// connections and the like come back as a Response with status 0 and the
// failure message as body, which keeps the pipeline uniform for the
// orchestrator and lets batch runs continue.
package executor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"reqchain/internal/types"
)

// DefaultTimeout is the HTTP client timeout when the caller passes zero.
const DefaultTimeout = 30 * time.Second

// Execute performs one resolved request. The returned response always
// has a usable shape; transport failures are normalized to status 0 with
// statusText "Error".
func Execute(ctx context.Context, req *types.ResolvedRequest, timeout time.Duration) *types.Response {
	start := time.Now()

	fail := func(err error) *types.Response {
		return &types.Response{
			Status:     0,
			StatusText: "Error",
			Body:       err.Error(),
			Duration:   time.Since(start).Milliseconds(),
			Request:    req,
		}
	}

	bodyReader, contentType, requestSize, err := encodeBody(req)
	if err != nil {
		return fail(fmt.Errorf("failed to encode body: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if err := applyAuth(httpReq, req.Auth); err != nil {
		return fail(err)
	}

	client, err := buildHTTPClient(req.TLS, timeout)
	if err != nil {
		return fail(fmt.Errorf("failed to configure HTTP client: %w", err))
	}

	resp, err := client.Do(httpReq)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		r := fail(err)
		r.Duration = duration
		r.RequestSize = requestSize
		return r
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.Response{
			Status:      resp.StatusCode,
			StatusText:  resp.Status,
			Body:        fmt.Sprintf("failed to read response body: %v", err),
			Duration:    duration,
			RequestSize: requestSize,
			Request:     req,
		}
	}

	headers := make(map[string]string)
	for key, values := range resp.Header {
		headers[key] = strings.Join(values, ", ")
	}

	result := &types.Response{
		Status:       resp.StatusCode,
		StatusText:   resp.Status,
		Headers:      headers,
		Body:         string(bodyBytes),
		Duration:     duration,
		RequestSize:  requestSize,
		ResponseSize: len(bodyBytes),
		Request:      req,
	}

	var parsed any
	if err := json.Unmarshal(bodyBytes, &parsed); err == nil {
		result.JSON = parsed
	}

	return result
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS settings.
func buildHTTPClient(tlsConfig *types.TLSConfig, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{}

	if tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// IsSuccessStatus returns true if status code is 2xx.
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
