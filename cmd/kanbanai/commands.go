package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/export/googletasks"
	"github.com/jask/kanbanai/internal/httpapi"
	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/render"
	"github.com/jask/kanbanai/internal/seed"
)

var (
	dryRun     bool
	serveAddr  string
	confirmYes bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt...]",
	Short: "Generate and store a board from a prompt",
	Long: `Sends the prompt to each configured model variant in order until one returns
a usable board, then stores it. With --dry-run the board is printed but not stored.

Example:
  kanbanai generate "plan a two week website redesign"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		svc, err := a.synthesis(ctx)
		if err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		if dryRun {
			res, err := svc.Plan(ctx, prompt)
			if err != nil {
				return err
			}
			logger.Debug("planned board", zap.String("variant", res.Variant), zap.Int("attempt", res.Attempt))
			return printSpec(cmd.OutOrStdout(), res.Value)
		}
		snap, err := svc.Synthesize(ctx, prompt, owner)
		if err != nil {
			return err
		}
		return printSnapshot(cmd.OutOrStdout(), snap)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [board-id]",
	Short: "Suggest additional tasks for a stored board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		svc, err := a.synthesis(ctx)
		if err != nil {
			return err
		}
		out, err := svc.SuggestForBoard(ctx, owner, args[0])
		if err != nil {
			return err
		}
		return printSuggestions(cmd.OutOrStdout(), out)
	},
}

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List your boards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		boards, err := a.boards().List(ctx, owner)
		if err != nil {
			return err
		}
		if format != "text" {
			return printValue(cmd.OutOrStdout(), boards)
		}
		if len(boards) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no boards")
			return nil
		}
		for _, b := range boards {
			fmt.Fprintln(cmd.OutOrStdout(), render.Summary(b))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [board-id]",
	Short: "Show a board with its lists and tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		snap, err := a.boards().Get(ctx, owner, args[0])
		if err != nil {
			return err
		}
		return printSnapshot(cmd.OutOrStdout(), snap)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [board-id]",
	Short: "Delete a board with its lists and tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.boards().Delete(ctx, owner, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		svc, err := a.synthesis(ctx)
		if err != nil {
			return err
		}
		addr := cfg.HTTP.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := &httpapi.Server{Synthesis: svc, Boards: a.boards(), Log: logger}
		return httpapi.Serve(ctx, addr, srv.Handler(), logger)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export-gtasks [board-id]",
	Short: "Copy a board into Google Tasks",
	Long: `Creates one Google task list per board list, titled "<board> / <list>".
Needs an OAuth client secret and a saved token at the paths in [google_tasks].`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		snap, err := a.boards().Get(ctx, owner, args[0])
		if err != nil {
			return err
		}
		exp, err := googletasks.New(ctx, cfg.GoogleTasks.OAuthClientPath, cfg.GoogleTasks.TokenPath, logger)
		if err != nil {
			return err
		}
		lists, err := exp.Export(ctx, snap)
		if err != nil {
			return err
		}
		if format != "text" {
			return printValue(cmd.OutOrStdout(), lists)
		}
		for _, l := range lists {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d tasks)\n", l.Title, l.Tasks)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every board, list and task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmYes {
			return errors.New("reset deletes all boards; pass --yes to confirm")
		}
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "all boards deleted")
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the generated board without storing it")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default http.addr from config)")
	resetCmd.Flags().BoolVar(&confirmYes, "yes", false, "confirm deleting everything")
}

var (
	seedCount int
	seedValue uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store sample boards without calling a model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		m := &kanban.Materializer{Store: a.store, Log: logger}
		snaps, err := seed.Boards(ctx, m, owner, seedCount, seedValue)
		if err != nil {
			return err
		}
		if format != "text" {
			return printValue(cmd.OutOrStdout(), snaps)
		}
		for _, s := range snaps {
			fmt.Fprintln(cmd.OutOrStdout(), render.Summary(s.Board))
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 3, "number of boards")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 1, "random seed")
}
