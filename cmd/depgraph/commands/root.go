package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moolen/depgraph/internal/adapter"
	"github.com/moolen/depgraph/internal/app"
	"github.com/moolen/depgraph/internal/config"
	"github.com/moolen/depgraph/internal/ingest"
	"github.com/moolen/depgraph/internal/logging"
	"github.com/moolen/depgraph/internal/store"
	"github.com/moolen/depgraph/internal/tracing"
)

const Version = "0.1.0"

var (
	logLevelFlags []string // Supports multiple --log-level flags
	configPath    string
)

var rootCmd = &cobra.Command{
	Use:   "depgraph",
	Short: "Depgraph - Service Dependency Evidence and Graph Analysis",
	Long: `Depgraph ingests dependency claims from heterogeneous observational sources
(router logs, configuration files, network scans, CI/CD logs, API-gateway logs,
Kubernetes manifests, observability data), stores them as multi-source evidence,
and produces a conflict-resolved, weighted dependency graph with transitive
closure and graph analytics.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLog(logLevelFlags)
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	// Global flags available to all subcommands
	// Supports per-package log levels: --log-level debug --log-level adapter.kubernetes=debug
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level",
		[]string{"info"},
		"Log level for packages. Use 'default=level' for default, or 'package.name=level' for per-package.\n"+
			"Examples: --log-level debug (all), --log-level resolver=debug --log-level store=warn")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file (source priorities, overrides, adapters, snapshot dir)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(transitiveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reportCmd)
}

// Exit codes for any script wrapping the CLI.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitParseError  = 2
	ExitPersistence = 3
	ExitCancelled   = 4
)

// ExitCodeFor maps an error returned by Execute to the CLI's exit-code
// convention: 2 for parse/adapter errors, 3 for persistence errors, 4 for
// cancellation, 1 for anything else.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitCancelled
	}
	var adapterErr *adapter.Error
	if errors.As(err, &adapterErr) {
		return ExitParseError
	}
	var selfLoop *store.SelfLoopError
	if errors.As(err, &selfLoop) {
		return ExitPersistence
	}
	return ExitFailure
}

// loadConfig reads --config when given, otherwise returns defaults.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// newApp builds the pipeline from --config and initializes tracing. The
// returned shutdown func flushes spans; call it before exiting.
func newApp() (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	tp, err := tracing.NewTracingProvider(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		TLSCAPath:   cfg.Tracing.TLSCAPath,
		TLSInsecure: cfg.Tracing.TLSInsecure,
	})
	if err != nil {
		return nil, nil, err
	}

	shutdown := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logging.GetLogger("commands").Warn("tracing shutdown failed: %v", err)
		}
	}
	return app.New(cfg), shutdown, nil
}

// ingestPaths runs one ingestion per path (and one more for rawData when
// non-empty) against a, returning every result. Used by the commands that
// need evidence loaded before they can resolve or analyze.
func ingestPaths(ctx context.Context, a *app.App, paths []string, hint, sourceID, rawData string) ([]ingest.IngestionResult, error) {
	var inputs []ingest.Input
	for _, p := range paths {
		inputs = append(inputs, ingest.Input{FilePath: p, SourceTypeHint: hint, SourceID: sourceID})
	}
	if rawData != "" {
		inputs = append(inputs, ingest.Input{RawData: rawData, SourceTypeHint: hint, SourceID: sourceID})
	}

	var results []ingest.IngestionResult
	for _, in := range inputs {
		res, err := a.Ingest(ctx, in)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// setupLog initializes the logging system with parsed log level flags
// Supports per-package log levels and environment variables
// Priority: CLI flags > Environment variables > Initialize default
func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}

	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags parses CLI flags and environment variables
// Priority: CLI flags > Environment variables
//
// CLI format: ["debug"], ["default=info", "adapter.kubernetes=debug"], or ["info"]
// Env vars: LOG_LEVEL_ADAPTER_KUBERNETES=debug (package name uppercased, dots to underscores)
//
// Returns: (defaultLevel, packageLevels map, error)
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	// Step 1: Parse environment variables first (lower priority)
	for _, envPair := range os.Environ() {
		if strings.HasPrefix(envPair, "LOG_LEVEL_") {
			parts := strings.SplitN(envPair, "=", 2)
			if len(parts) != 2 {
				continue
			}
			packageName := convertEnvKeyToPackageName(parts[0])
			result[packageName] = parts[1]
		}
	}

	// Step 2: Parse CLI flags (override env vars)
	for _, flag := range flags {
		if !strings.Contains(flag, "=") {
			// Simple format like "debug" or "info" means default level
			result["default"] = flag
		} else {
			parts := strings.SplitN(flag, "=", 2)
			if len(parts) == 2 {
				result[parts[0]] = parts[1]
			}
		}
	}

	// Step 3: Extract default level (special key "default")
	defaultLevel := "info"
	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if err := validateLogLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if err := validateLogLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %v", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

// convertEnvKeyToPackageName converts LOG_LEVEL_ADAPTER_KUBERNETES -> adapter.kubernetes
func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}

// validateLogLevel checks if a level string is valid
func validateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error, fatal)", level)
	}
	return nil
}
