package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ctmigrate/internal/chunk"
	"github.com/roach88/ctmigrate/internal/ir"
	"github.com/roach88/ctmigrate/internal/migration"
	"github.com/roach88/ctmigrate/internal/script"
	"github.com/roach88/ctmigrate/internal/store"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Output string // write the chunked plan as canonical JSON
	DB     string // persist the plan to a SQLite store
	Name   string // plan name in the store; defaults to the script base name
}

// PlanResult is the data payload of the plan command.
type PlanResult struct {
	Script   string     `json:"script"`
	PlanHash string     `json:"plan_hash"`
	Actions  int        `json:"actions"`
	Chunks   []ir.Chunk `json:"chunks"`
	RunID    string     `json:"run_id,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <script>",
		Short: "Record a migration script and print its chunked plan",
		Long: `Record a CUE or YAML migration script into an action plan and partition
it into chunks. No validation is performed and no service is contacted.

Examples:
  ctmigrate plan migrations/01-person.cue
  ctmigrate plan migrations/02-blog.yaml --output plan.json
  ctmigrate plan migrations/02-blog.yaml --db plans.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the chunked plan as canonical JSON")
	cmd.Flags().StringVar(&opts.DB, "db", "", "persist the plan to a SQLite store")
	cmd.Flags().StringVar(&opts.Name, "name", "", "plan name in the store (default: script file name)")

	return cmd
}

func runPlan(ctx context.Context, opts *PlanOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	log, chunks, err := recordPlan(ctx, f, path)
	if err != nil {
		return err
	}
	hash, err := ir.PlanHash(log)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "hash plan", err)
	}

	if opts.Output != "" {
		data, err := ir.MarshalCanonical(chunks)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeOutput, "marshal plan", err)
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return f.Fail(ExitCommandError, ErrCodeOutput, "write plan", err)
		}
		f.VerboseLog("Wrote plan to %s", opts.Output)
	}

	result := PlanResult{
		Script:   path,
		PlanHash: hash,
		Actions:  len(log),
		Chunks:   chunks,
	}

	if opts.DB != "" {
		sum, err := persistPlan(ctx, f, opts.DB, store.Plan{
			Name:   planName(opts.Name, path),
			Source: path,
			Chunks: chunks,
			Errors: []ir.ValidationError{},
		})
		if err != nil {
			return err
		}
		result.RunID = sum.ID
	}

	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "Plan %s: %s, %s\n", shortHash(hash), plural(len(log), "action"), plural(len(chunks), "chunk"))
	printChunks(w, chunks)
	if result.RunID != "" {
		fmt.Fprintf(w, "Stored as %s\n", result.RunID)
	}
	return nil
}

// recordPlan loads and records the script at path, then partitions it.
// Failures are reported through f and returned as command errors.
func recordPlan(ctx context.Context, f *OutputFormatter, path string) (ir.ActionLog, []ir.Chunk, error) {
	_, log, err := script.RecordFile(ctx, path, migration.WithLogger(f.Logger()))
	if err != nil {
		var loadErr *script.LoadError
		if errors.As(err, &loadErr) {
			return nil, nil, f.Fail(ExitCommandError, loadErr.Code, loadErr.Error(), nil)
		}
		return nil, nil, f.Fail(ExitCommandError, ErrCodeGeneric, "record script", err)
	}

	chunks := chunk.Partition(log)
	if chunks == nil {
		chunks = []ir.Chunk{}
	}
	f.VerboseLog("Recorded %s in %s from %s", plural(len(log), "action"), plural(len(chunks), "chunk"), path)
	return log, chunks, nil
}

// persistPlan writes p to the store at dbPath.
func persistPlan(ctx context.Context, f *OutputFormatter, dbPath string, p store.Plan) (store.PlanSummary, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return store.PlanSummary{}, f.Fail(ExitCommandError, ErrCodeStore, "open store", err)
	}
	defer st.Close()

	sum, err := st.WritePlan(ctx, p)
	if err != nil {
		return store.PlanSummary{}, f.Fail(ExitCommandError, ErrCodeStore, "write plan", err)
	}
	f.VerboseLog("Stored plan %s (seq %d) in %s", sum.ID, sum.Seq, dbPath)
	return sum, nil
}

func planName(name, path string) string {
	if name != "" {
		return name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// printChunks writes one block per chunk, one line per action.
func printChunks(w io.Writer, chunks []ir.Chunk) {
	for i, c := range chunks {
		fmt.Fprintf(w, "\nchunk %d: %s\n", i+1, c[0].Meta.ContentTypeInstanceID)
		for _, a := range c {
			line := fmt.Sprintf("  %-24s", a.Type)
			if a.Meta.FieldInstanceID != "" {
				line += " " + a.Meta.FieldInstanceID
			}
			if a.Callsite != nil {
				line += "  (" + a.Callsite.String() + ")"
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
