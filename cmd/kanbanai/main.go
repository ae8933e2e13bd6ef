package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/config"
	"github.com/jask/kanbanai/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	owner      string
	format     string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kanbanai",
	Short: "Generate kanban boards from plain-language prompts",
	Long: `kanbanai turns a free-form project description into a stored kanban board
with lists, tasks and subtasks, using a chain of generative model variants.

Boards live in sqlite by default, or MongoDB when database.driver = "mongo".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Log.JSON)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $KANBANAI_CONFIG or ~/.config/kanbanai/config.toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&owner, "owner", defaultOwner(), "owner id boards are stored under")
	pf.StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(
		generateCmd,
		suggestCmd,
		boardsCmd,
		showCmd,
		deleteCmd,
		serveCmd,
		exportCmd,
		resetCmd,
		keyCmd,
		seedCmd,
		configCmd,
	)
}

func defaultOwner() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
