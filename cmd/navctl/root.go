package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"navshell/internal/features"
	"navshell/internal/navigation"
	"navshell/internal/platform/config"
	"navshell/internal/platform/logger"
	"navshell/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:           "navctl",
	Short:         "Inspect role-scoped navigation",
	Long:          "navctl builds a navigation registry from the feature catalog and prints what a role sees.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML file with priority, breakpoint and feature manifests")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log registration diagnostics")

	rootCmd.AddCommand(destinationsCmd, mainCmd, catalogCmd)
}

// loadConfig reads the environment and overlays --config when given.
func loadConfig(cmd *cobra.Command) (config.Server, error) {
	cfg := config.FromEnv()
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err := config.Overlay(&cfg, f); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// workspace is a registry built for one command invocation.
type workspace struct {
	cfg       config.Server
	providers []navigation.FeatureProvider
	reg       *navigation.Registry
}

// buildWorkspace registers the catalog and manifests for role. Rejected
// providers are reported on stderr and skipped.
func buildWorkspace(cmd *cobra.Command, role domain.Role) (*workspace, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	extra, err := features.FromManifests(cfg.Navigation.Features)
	if err != nil {
		return nil, err
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log = logger.NewWithWriter(cmd.ErrOrStderr(), "text", "debug")
	}
	ws := &workspace{
		cfg: cfg,
		reg: navigation.New(
			navigation.WithLogger(log),
			navigation.WithPriority(cfg.Navigation.Priority),
			navigation.WithInitialRole(role),
		),
	}
	for _, p := range append(features.Catalog(), extra...) {
		if err := ws.reg.Register(p); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped provider: %v\n", err)
			continue
		}
		ws.providers = append(ws.providers, p)
	}
	return ws, nil
}

func roleFlag(cmd *cobra.Command) (domain.Role, error) {
	raw, _ := cmd.Flags().GetString("role")
	if raw == "" || raw == "none" {
		return domain.RoleNone, nil
	}
	return domain.ParseRole(raw)
}
