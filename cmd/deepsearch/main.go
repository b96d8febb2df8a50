// Package main is the deepsearch CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/deepsearch/internal/config"
)

var version = "dev"

const defaultServerURL = "http://localhost:8000"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	serverURL  string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "deepsearch",
		Short: "Semantic document search",
		Long: `deepsearch stores documents, embeds them and answers natural-language
queries by cosine similarity.

Client commands talk to a running server by default. Pass --server "" to open
the database and vector index directly; do not do this while a server is
running against the same files.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", defaultServerURL, `server URL; "" opens the stores directly`)
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newServerCmd(opts),
		newSearchCmd(opts),
		newIngestCmd(opts),
		newGetCmd(opts),
		newStatusCmd(opts),
		newRepairCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deepsearch %s\n", version)
			return err
		},
	}
}

// loadConfig loads config from path. An empty path falls back to config.yaml
// in the current directory when it exists, and to the built-in defaults
// otherwise. Returns the config and the path that was loaded ("" for defaults).
func loadConfig(path string, debug bool) (*config.Config, string, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg = config.Default()
	} else if cfg, err = config.Load(path); err != nil {
		return nil, "", err
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// buildSearchQuery joins positional args into a single query string.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// parseMeta turns repeated key=value flags into a metadata map. Later keys win.
func parseMeta(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: want key=value", p)
		}
		meta[key] = value
	}
	return meta, nil
}
