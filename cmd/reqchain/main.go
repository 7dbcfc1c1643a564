package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"reqchain/internal/config"
	"reqchain/internal/history"
	"reqchain/internal/output"
	"reqchain/internal/parser"
	"reqchain/internal/profile"
	"reqchain/internal/resolver"
	"reqchain/internal/runner"
	"reqchain/internal/types"
)

var version = "0.1.0"

// Source priorities outside the session (which is fixed highest, see
// internal/session). CLI -e overrides beat the environment, the
// environment beats profile defaults.
const (
	cliVarPriority = 900
	envVarPriority = 500
)

var (
	flagProfile    string
	flagVars       []string
	flagEnvFile    string
	flagStrict     bool
	flagMaxDepth   int
	flagScriptTime time.Duration
	flagHTTPTime   time.Duration
	flagSessionIn  string
	flagSessionOut string
	flagOutput     string
	flagFull       bool
	flagNoHistory  bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "reqchain <file-or-directory>",
	Short: "Execute declarative HTTP request definitions with scripting and chaining",
	Long: `reqchain executes YAML/JSON request definitions against live HTTP
endpoints. Definitions may carry pre/post scripts; variables the scripts
write propagate to later requests in the same run, which is how chained
flows (login, then use the token) are built.

Examples:
  reqchain run login.yaml                 # single file
  reqchain run flows/ -p dev              # directory, lexical order, one session
  reqchain run api.yaml -e userId=42      # CLI variable override
  reqchain run api.yaml --session-out s.json
  reqchain run next.yaml --session-in s.json`,
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args[0])
	},
}

var runCmd = &cobra.Command{
	Use:   "run <file-or-directory>",
	Short: "Execute a request definition file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args[0])
	},
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVarP(&flagProfile, "profile", "p", "", "profile name from the profiles file")
		cmd.Flags().StringArrayVarP(&flagVars, "var", "e", nil, "variable override (key=value, repeatable)")
		cmd.Flags().StringVar(&flagEnvFile, "env-file", "", "load additional environment variables from a .env file")
		cmd.Flags().BoolVar(&flagStrict, "strict", false, "fail on unresolved variables instead of leaving them verbatim")
		cmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, "maximum recursive variable resolution depth")
		cmd.Flags().DurationVar(&flagScriptTime, "script-timeout", 0, "wall-clock limit per script execution")
		cmd.Flags().DurationVar(&flagHTTPTime, "http-timeout", 0, "HTTP client timeout")
		cmd.Flags().StringVar(&flagSessionIn, "session-in", "", "load chained session state from a file before the run")
		cmd.Flags().StringVar(&flagSessionOut, "session-out", "", "export session state to a file after the run")
		cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output format: text, json, yaml, body")
		cmd.Flags().BoolVar(&flagFull, "full", false, "include response headers in text output")
		cmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "do not record this run in the history database")
		cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	}
	rootCmd.AddCommand(runCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	logger := newLogger()

	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	var activeProfile *profile.Profile
	if flagProfile != "" {
		profiles, err := profile.Load(config.ProfilesFile)
		if err != nil {
			return err
		}
		if activeProfile, err = profile.Find(profiles, flagProfile); err != nil {
			return err
		}
	}

	envVars := parser.SystemEnv()
	if flagEnvFile != "" {
		fileEnv, err := parser.LoadEnvFile(flagEnvFile)
		if err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		for k, v := range fileEnv {
			envVars[k] = v
		}
	}

	cliVars := make(map[string]string)
	for _, ev := range flagVars {
		key, value, _ := strings.Cut(ev, "=")
		if key != "" {
			cliVars[key] = value
		}
	}

	sources := []types.VariableSource{
		resolver.NewStaticSource("cli", cliVarPriority, cliVars),
		resolver.NewStaticSource("env", envVarPriority, envVars),
	}
	if activeProfile != nil {
		sources = append(sources, activeProfile.Source())
	}

	var hist *history.Manager
	if !flagNoHistory {
		var err error
		if hist, err = history.NewManager(config.DatabasePath); err != nil {
			logger.Warn().Err(err).Msg("history disabled")
			hist = nil
		} else {
			defer hist.Close()
		}
	}

	r := runner.New(runner.Options{
		Strict:        flagStrict,
		MaxDepth:      flagMaxDepth,
		ScriptTimeout: flagScriptTime,
		HTTPTimeout:   flagHTTPTime,
		Sources:       sources,
		Env:           envVars,
		History:       hist,
		Logger:        logger,
	})

	if flagSessionIn != "" {
		if err := r.Session().Load(flagSessionIn); err != nil {
			return err
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	failed := false
	if info.IsDir() {
		results, err := r.RunDir(ctx, path)
		if err != nil {
			return err
		}
		for _, fr := range results {
			if fr.Failed() {
				failed = true
			}
		}
		fmt.Print(output.Summary(results))
	} else {
		fr := r.RunFile(ctx, path)
		if fr.Err != nil {
			return fr.Err
		}
		for _, resp := range fr.Responses {
			text, err := output.Format(resp, outputFormat(activeProfile), flagFull, activeProfile)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			fmt.Print(text)
		}
		failed = fr.Failed()
	}

	if flagSessionOut != "" {
		if err := r.Session().Export(flagSessionOut); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Session exported to %s\n", flagSessionOut)
	}

	if failed {
		os.Exit(1)
	}
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent request history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}
		hist, err := history.NewManager(config.DatabasePath)
		if err != nil {
			return err
		}
		defer hist.Close()

		entries, err := hist.Recent(20)
		if err != nil {
			return err
		}
		for _, e := range entries {
			status := "ok"
			if e.Failed {
				status = "failed"
			}
			fmt.Printf("%s  %-6s %-40s %d %s (%dms)\n",
				e.Timestamp.Format(time.RFC3339), e.Method, e.URL, e.Status, status, e.Duration)
		}
		return nil
	},
}

func outputFormat(p *profile.Profile) string {
	if flagOutput != "" {
		return flagOutput
	}
	if p != nil && p.Output != "" {
		return p.Output
	}
	stat, _ := os.Stdout.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		return "body"
	}
	return "text"
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
