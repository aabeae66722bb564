package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gifstash/internal/config"
	"gifstash/internal/format"
)

// outputFlags selects structured output for commands that support it.
type outputFlags struct {
	json bool
	yaml bool
}

func (o *outputFlags) structured() bool {
	return o != nil && (o.json || o.yaml)
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		out      outputFlags
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "gifstash",
		Short:         "gifstash stores, labels and retrieves short GIF clips",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if out.json && out.yaml {
				return errors.New("--json and --yaml are mutually exclusive")
			}
			outputFormatter = format.JSONFormatter{}
			if out.yaml {
				outputFormatter = format.YAMLFormatter{}
			}

			warnings, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			for _, warning := range warnings {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&out.json, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&out.yaml, "yaml", false, "output YAML")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newAddCmd(cfg, &out),
		newShowCmd(cfg, &out),
		newListCmd(cfg, &out),
		newSearchCmd(cfg, &out),
		newUpdateCmd(cfg, &out),
		newFavCmd(cfg, &out, true),
		newFavCmd(cfg, &out, false),
		newRemoveCmd(cfg, &out),
		newPathCmd(cfg, &out),
		newCopyCmd(cfg, &out),
		newCatCmd(cfg),
		newLabelCmd(cfg, &out),
		newInfoCmd(cfg, &out),
		newExportCmd(cfg),
		newImportLegacyCmd(cfg, &out),
		newAdminCmd(cfg, &out),
		newConfigCmd(cfg),
	)

	return cmd
}
