// Package output renders responses and batch summaries for the terminal.
// Secret masking happens here and only here; the pipeline always works
// with real values.
package output

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"reqchain/internal/runner"
	"reqchain/internal/types"
)

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

// Masker rewrites presentation text to hide secrets. profile.Profile
// satisfies it; nil means no masking.
type Masker interface {
	MaskSecrets(text string) string
}

// Format renders a response in the requested format: "json", "yaml",
// "body", or "text" (the default).
func Format(resp *types.Response, format string, full bool, masker Masker) (string, error) {
	mask := func(s string) string {
		if masker == nil {
			return s
		}
		return masker.MaskSecrets(s)
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return "", err
		}
		return mask(string(data)), nil

	case "yaml":
		data, err := yaml.Marshal(resp)
		if err != nil {
			return "", err
		}
		return mask(string(data)), nil

	case "body":
		return mask(resp.Body), nil

	default:
		return mask(formatText(resp, full)), nil
	}
}

func formatText(resp *types.Response, full bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s%s%s\n", statusColor(resp.Status), statusLine(resp), colorReset))
	sb.WriteString(fmt.Sprintf("Duration: %dms | Size: %dB\n", resp.Duration, resp.ResponseSize))

	if full && len(resp.Headers) > 0 {
		sb.WriteString("\nHeaders:\n")
		for key, value := range resp.Headers {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", key, value))
		}
	}

	if len(resp.Logs) > 0 {
		sb.WriteString("\nScript output:\n")
		for _, line := range resp.Logs {
			sb.WriteString("  " + line + "\n")
		}
	}

	if len(resp.Assertions) > 0 {
		sb.WriteString("\nAssertions:\n")
		for _, a := range resp.Assertions {
			mark := colorGreen + "PASS" + colorReset
			if !a.Passed {
				mark = colorRed + "FAIL" + colorReset
			}
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", mark, a.Message))
		}
	}

	if resp.ScriptError != "" {
		sb.WriteString(fmt.Sprintf("\n%sPost-script error: %s%s\n", colorYellow, resp.ScriptError, colorReset))
	}

	if resp.Body != "" {
		sb.WriteString("\n")
		sb.WriteString(resp.Body)
		sb.WriteString("\n")
	}

	return sb.String()
}

func statusLine(resp *types.Response) string {
	if resp.StatusText != "" {
		return resp.StatusText
	}
	return fmt.Sprintf("%d", resp.Status)
}

func statusColor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return colorGreen
	case status == 0 || status >= 400:
		return colorRed
	default:
		return colorYellow
	}
}

// Summary renders the per-file and aggregate lines for a batch run.
func Summary(results []*runner.FileResult) string {
	var sb strings.Builder
	failed := 0

	for _, fr := range results {
		name := filepath.Base(fr.File)
		if fr.Failed() {
			failed++
			reason := "failed"
			if fr.Err != nil {
				reason = fr.Err.Error()
			} else if len(fr.Responses) > 0 {
				last := fr.Responses[len(fr.Responses)-1]
				reason = statusLine(last)
				if last.Status == 0 {
					reason = last.Body
				}
			}
			sb.WriteString(fmt.Sprintf("%sFAIL%s  %s (%s)\n", colorRed, colorReset, name, reason))
		} else {
			sb.WriteString(fmt.Sprintf("%sPASS%s  %s\n", colorGreen, colorReset, name))
		}
	}

	sb.WriteString(fmt.Sprintf("\n%d/%d files passed\n", len(results)-failed, len(results)))
	return sb.String()
}
