// Package main provides the pubsync CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/config"
	"github.com/nicomarr/pubsync/internal/openalex"
	"github.com/nicomarr/pubsync/internal/record"
	"github.com/nicomarr/pubsync/internal/table"
)

// Version is set at build time via ldflags
var Version = "dev"

// quiet suppresses informational output; errors still go to stderr.
var quiet bool

// dataDir overrides the data directory from config.
var dataDir string

// tableFile overrides the table path inside the data directory.
var tableFile string

// contactEmail overrides the contact email from environment and config.
var contactEmail string

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubsync",
	Short: "Keep a publications-page table in sync with OpenAlex",
	Long: `pubsync reconciles a local publications table (CSV) against the
OpenAlex bibliographic API.

Core features:
  - Refresh citation counts in place (counts never decrease)
  - Append newly published articles from an identifier list
  - Bootstrap a fresh table from an author's full work list
  - Harvest DOIs from article PDFs
  - Mirror the table into SQLite for ad-hoc queries

The CSV file stays the source of truth; every write is preceded by a
timestamped backup and recorded in update-log.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "", "Data directory holding the table and identifier list")
	rootCmd.PersistentFlags().StringVar(&tableFile, "table", "", "Table file (default: <dir>/"+table.MetadataFile+")")
	rootCmd.PersistentFlags().StringVar(&contactEmail, "email", "", "Contact email for OpenAlex requests")
	rootCmd.Version = Version
}

// mustResolveDataDir picks the data directory: a positional argument wins,
// then the --dir flag, then the config file's data_dir, then the current
// working directory.
func mustResolveDataDir(args ...string) string {
	if len(args) > 0 && args[0] != "" {
		return config.ExpandTilde(args[0])
	}
	if dataDir != "" {
		return config.ExpandTilde(dataDir)
	}

	cfg := mustLoadConfig()
	if cfg.DataDir != "" {
		return cfg.DataDir
	}

	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	return cwd
}

// mustLoadConfig loads the global configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// tablePath resolves the table file path, honoring the --table override.
func tablePath(dir string) string {
	if tableFile != "" {
		return config.ExpandTilde(tableFile)
	}
	return filepath.Join(dir, table.MetadataFile)
}

// mustLoadTable loads the publications table from the data directory.
func mustLoadTable(dir string) []record.Record {
	path := tablePath(dir)
	recs, err := table.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			exitWithError(ExitConfigError, "no table at %s\n\nRun 'pubsync bootstrap --author <id>' to create one.", path)
		}
		exitWithError(ExitDataError, "loading table: %v", err)
	}
	return recs
}

// newClient builds an OpenAlex client carrying the contact email; the
// --email flag beats environment and config.
func newClient() *openalex.Client {
	email := contactEmail
	if email == "" {
		email = config.Email()
	}

	var opts []openalex.ClientOption
	if email != "" {
		opts = append(opts, openalex.WithMailto(email))
	}
	return openalex.NewClient(opts...)
}
