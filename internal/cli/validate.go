package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ctmigrate/internal/client"
	"github.com/roach88/ctmigrate/internal/entries"
	"github.com/roach88/ctmigrate/internal/ir"
	"github.com/roach88/ctmigrate/internal/store"
	"github.com/roach88/ctmigrate/internal/validate"
)

// DefaultApplication is the application name sent to the service.
const DefaultApplication = "ctmigrate"

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Remote string // remote snapshot JSON file
	Live   bool   // fetch the remote baseline from the service
	DB     string
	Name   string

	// Live service settings; unset values fall back to the environment and
	// the config file.
	Config      string
	Params      client.Config
	Concurrency int
}

// ValidationResult is the data payload of the validate command.
type ValidationResult struct {
	Valid    bool                 `json:"valid"`
	PlanHash string               `json:"plan_hash"`
	Actions  int                  `json:"actions"`
	Chunks   int                  `json:"chunks"`
	Errors   []ir.ValidationError `json:"errors"`
	RunID    string               `json:"run_id,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Validate a migration plan against a remote content model",
		Long: `Record a migration script and check every action against the lifecycle
of the content types and fields it touches.

The baseline is empty unless --remote names a snapshot file (a JSON array of
content types or a content_types collection response) or --live fetches it
from the service. With --live, content types the plan deletes are checked for
entries.

Exit codes:
  0 - Plan is valid
  1 - Plan has validation errors
  2 - Command error (unreadable script, snapshot or service failure)

Examples:
  ctmigrate validate migrations/01-person.cue
  ctmigrate validate migrations/02-blog.yaml --remote snapshot.json
  ctmigrate validate migrations/02-blog.yaml --live --space-id abc123`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Remote, "remote", "", "remote snapshot JSON file")
	cmd.Flags().BoolVar(&opts.Live, "live", false, "fetch the remote baseline from the service")
	cmd.Flags().StringVar(&opts.DB, "db", "", "persist the plan and its findings to a SQLite store")
	cmd.Flags().StringVar(&opts.Name, "name", "", "plan name in the store (default: script file name)")
	cmd.MarkFlagsMutuallyExclusive("remote", "live")

	cmd.Flags().StringVar(&opts.Config, "config", "", "config file (default: ~/"+client.ConfigFileName+")")
	cmd.Flags().StringVar(&opts.Params.SpaceID, "space-id", "", "space id")
	cmd.Flags().StringVar(&opts.Params.EnvironmentID, "environment-id", "", "environment id (default: "+client.DefaultEnvironmentID+")")
	cmd.Flags().StringVar(&opts.Params.AccessToken, "access-token", "", "management access token")
	cmd.Flags().StringVar(&opts.Params.Application, "application", DefaultApplication, "application name reported to the service")
	cmd.Flags().StringVar(&opts.Params.Host, "host", "", "API host (default: "+client.DefaultHost+")")
	cmd.Flags().StringVar(&opts.Params.Proxy, "proxy", "", "HTTPS proxy URL")
	cmd.Flags().BoolVar(&opts.Params.Insecure, "insecure", false, "use plain HTTP")
	cmd.Flags().IntVar(&opts.Params.RateLimit, "rate-limit", 0, "requests per second")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", entries.DefaultConcurrency, "parallel entry lookups")

	return cmd
}

func runValidate(ctx context.Context, opts *ValidateOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	log, chunks, err := recordPlan(ctx, f, path)
	if err != nil {
		return err
	}
	hash, err := ir.PlanHash(log)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "hash plan", err)
	}

	var remote []ir.RemoteContentType
	switch {
	case opts.Remote != "":
		if remote, err = loadSnapshot(opts.Remote); err != nil {
			return f.Fail(ExitCommandError, ErrCodeRemote, "load remote snapshot", err)
		}
	case opts.Live:
		if remote, err = fetchRemote(ctx, opts, f, chunks); err != nil {
			return f.Fail(ExitCommandError, ErrCodeService, "fetch remote content model", err)
		}
	}
	f.VerboseLog("Validating against %d remote content type(s)", len(remote))

	errs := validate.Validate(chunks, remote)
	result := ValidationResult{
		Valid:    len(errs) == 0,
		PlanHash: hash,
		Actions:  len(log),
		Chunks:   len(chunks),
		Errors:   errs,
	}

	if opts.DB != "" {
		sum, err := persistPlan(ctx, f, opts.DB, store.Plan{
			Name:   planName(opts.Name, path),
			Source: path,
			Chunks: chunks,
			Errors: errs,
		})
		if err != nil {
			return err
		}
		result.RunID = sum.ID
	}

	if result.Valid {
		if f.Format == "json" {
			return f.Success(result)
		}
		fmt.Fprintf(f.Writer, "✓ Plan %s is valid (%s, %s)\n",
			shortHash(hash), plural(result.Actions, "action"), plural(result.Chunks, "chunk"))
		return nil
	}
	return outputFindings(f, result)
}

// outputFindings reports validation errors and returns exit code 1.
func outputFindings(f *OutputFormatter, result ValidationResult) error {
	summary := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))

	if f.Format == "json" {
		err := f.encode(CLIResponse{
			Status:   "error",
			Data:     result,
			PlanHash: result.PlanHash,
			Error:    &CLIError{Code: ErrCodeFindings, Message: result.Errors[0].Message},
		})
		if err != nil {
			return err
		}
		return NewExitError(ExitFailure, summary)
	}

	fmt.Fprintf(f.Writer, "✗ Plan %s has %s\n\n", shortHash(result.PlanHash), plural(len(result.Errors), "error"))
	for _, e := range result.Errors {
		step := e.Details.Step
		if step.Callsite != nil {
			fmt.Fprintln(f.Writer, step.Callsite.String())
		}
		target := step.Meta.ContentTypeInstanceID
		if step.Meta.FieldInstanceID != "" {
			target += " " + step.Meta.FieldInstanceID
		}
		fmt.Fprintf(f.Writer, "  %s [%s %s]\n\n", e.Message, step.Type, target)
	}
	return NewExitError(ExitFailure, summary)
}

// loadSnapshot reads a remote snapshot. Both a bare array of content types
// and a collection response with an items array are accepted.
func loadSnapshot(path string) ([]ir.RemoteContentType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []ir.RemoteContentType
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var coll struct {
		Items *[]ir.RemoteContentType `json:"items"`
	}
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if coll.Items == nil {
		return nil, fmt.Errorf("parse %s: want a content type array or an object with items", path)
	}
	return *coll.Items, nil
}

// fetchRemote resolves the client config, fetches every content type and
// marks the ones the plan deletes that still have entries.
func fetchRemote(ctx context.Context, opts *ValidateOptions, f *OutputFormatter, chunks []ir.Chunk) ([]ir.RemoteContentType, error) {
	e, err := client.LoadEnv()
	if err != nil {
		return nil, err
	}

	configPath := opts.Config
	if configPath == "" {
		if configPath, err = client.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	file, err := client.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := client.Resolve(opts.Params, e, file)
	if err != nil {
		return nil, err
	}
	c, err := client.New(cfg, client.WithLogger(f.Logger()))
	if err != nil {
		return nil, err
	}
	f.VerboseLog("Fetching content types from %s (space %s, environment %s)", cfg.Host, cfg.SpaceID, cfg.EnvironmentID)

	remote, err := c.ContentTypes(ctx)
	if err != nil {
		return nil, err
	}
	return entries.Annotate(ctx, chunks, remote, c.Request, entries.WithConcurrency(opts.Concurrency))
}
