// Package cmd implements the schemacache CLI: resolve references,
// list namespaces and serve a scope's schema set, all driven by an
// HCL workspace file.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/schemacache/schemacache"
	"github.com/schemacache/schemacache/api"
	"github.com/schemacache/schemacache/internal/observe"
)

var (
	configPath string
	verbose    bool

	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
)

var rootCmd = &cobra.Command{
	Use:   "schemacache",
	Short: "Scoped schema reference resolution and caching",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "workspace.hcl", "Path to workspace file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newProvider loads the workspace file and wires a provider over it.
// The dependency token is the scope's configuration fingerprint, so a
// workspace edit between commands would invalidate the cache; within
// one CLI run every scope builds at most once.
func newProvider() (*schemacache.Provider, *api.Workspace, error) {
	ws, err := api.LoadWorkspace(configPath)
	if err != nil {
		return nil, nil, err
	}

	scopes := schemacache.ScopeLookupFunc(func(doc string) (schemacache.Scope, bool) {
		name, ok := ws.ScopeFor(doc)
		return schemacache.Scope(name), ok
	})

	config := func(scope schemacache.Scope) (schemacache.ScopeConfig, bool) {
		sb, ok := ws.Scope(string(scope))
		if !ok {
			return schemacache.ScopeConfig{}, false
		}
		cfg := schemacache.ScopeConfig{ExternalPrefix: sb.Prefix}
		for _, dir := range sb.Roots {
			cfg.Roots = append(cfg.Roots, &schemacache.Root{Name: dir, FS: osfs.New(dir)})
		}
		return cfg, true
	}

	token := func(scope schemacache.Scope) schemacache.Token {
		if sb, ok := ws.Scope(string(scope)); ok {
			return sb.Fingerprint()
		}
		return nil
	}

	var sink schemacache.Sink = observe.NopSink{}
	if verbose {
		sink = observe.LogSink{Logger: logger}
	}

	return schemacache.NewProvider(scopes, config, token, sink), ws, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
