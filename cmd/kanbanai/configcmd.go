package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/kanbanai/internal/config"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective config (defaults, file and env) to the config path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeConfig(cmd.OutOrStdout(), config.Path(configPath), forceInit)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := cfg
		if shown.LLM.APIKey != "" {
			shown.LLM.APIKey = "********"
		}
		if format == "text" {
			fmt.Fprintln(cmd.OutOrStdout(), "#", config.Path(configPath))
			return printYAML(cmd.OutOrStdout(), shown)
		}
		return printValue(cmd.OutOrStdout(), shown)
	},
}

// writeConfig saves cfg to path. An existing file is kept unless force is set.
func writeConfig(w io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; pass --force to overwrite", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "wrote", path)
	return err
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
}
