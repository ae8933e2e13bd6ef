package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/kanbanai/internal/secrets"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the saved model API key",
	Long: `Saves the model API key for the configured provider outside config.toml.
Environment variables and llm.api_key still take precedence.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Save an API key for the configured provider (reads stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read key: %w", err)
			}
			key = strings.TrimSpace(line)
		}
		store, err := secrets.Default()
		if err != nil {
			return err
		}
		if err := store.Put(cfg.LLM.Provider, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s key\n", cfg.LLM.Provider)
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the saved API key for the configured provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secrets.Default()
		if err != nil {
			return err
		}
		if err := store.Delete(cfg.LLM.Provider); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s key\n", cfg.LLM.Provider)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd)
}
