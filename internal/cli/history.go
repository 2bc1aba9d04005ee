package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ctmigrate/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB   string
	Hash string // only plans with this plan hash
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List plans stored by plan and validate",
		Long: `List the plans persisted with --db, oldest first.

Examples:
  ctmigrate history --db plans.db
  ctmigrate history --db plans.db --hash 9ce9fdaadbe8...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite store (required)")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "only plans with this plan hash")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("database not found: %s", opts.DB), nil)
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "open store", err)
	}
	defer st.Close()

	var plans []store.PlanSummary
	if opts.Hash != "" {
		plans, err = st.PlansByHash(ctx, opts.Hash)
	} else {
		plans, err = st.ListPlans(ctx)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "list plans", err)
	}
	if plans == nil {
		plans = []store.PlanSummary{}
	}

	if f.Format == "json" {
		return f.Success(plans)
	}

	if len(plans) == 0 {
		fmt.Fprintln(f.Writer, "No plans stored.")
		return nil
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tNAME\tHASH\tACTIONS\tCHUNKS\tERRORS\tID")
	for _, p := range plans {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			p.Seq, p.Name, shortHash(p.PlanHash), p.Actions, p.Chunks, p.Errors, p.ID)
	}
	return tw.Flush()
}
