// Package cli implements the lignin-replay commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/lignin-replay/pkg/config"
	"github.com/chazu/lignin-replay/pkg/logging"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

// app carries the state shared by every command.
type app struct {
	cfgPath   string
	logLevel  string
	logFormat string

	cfg *config.Config
	log *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lignin-replay",
		Short: "Replay recorded sketch and extrude timelines",
		Long: "Rebuilds a CAD model from a recorded construction timeline. Sketch curves are\n" +
			"replayed, recorded profiles are re-identified by curve identity and area\n" +
			"properties, and extrude features are recreated in order.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "Config file (default: ~/.lignin-replay/config.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: json or console")

	root.AddCommand(
		newRunCmd(a),
		newCheckCmd(a),
		newEvalCmd(a),
		newWatchCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lignin-replay %s\n", Version)
		},
	}
}
