package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/querysync"
	"github.com/matzehuels/pkgtrack/pkg/series"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

// showOptions holds flags for the show command.
type showOptions struct {
	query string
	json  bool
	chart bool
}

// showReport is the --json output of the show command.
type showReport struct {
	Packages []tracker.Summary `json:"packages"`
	Chart    []series.ChartRow `json:"chart,omitempty"`
	Query    string            `json:"query"`
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var opts showOptions

	cmd := &cobra.Command{
		Use:   "show [package...]",
		Short: "Fetch packages once and print their download summary",
		Long: `Fetch download history and releases for the given packages and print a summary.

Packages may also be given as a shared query string (as printed by this command):

  pkgtrack show react vue
  pkgtrack show --query 'packages=react,vue,%40types%2Fnode'`,
		Example: `  pkgtrack show react
  pkgtrack show react vue svelte --json --chart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := append(querysync.Parse(opts.query), args...)
			names = tracker.NormalizeAll(names)
			if len(names) == 0 {
				return errors.New(errors.ErrCodeInvalidArgument, "no packages given")
			}
			for _, name := range names {
				if err := errors.ValidatePackageName(name); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			return c.runShow(cmd, names, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "shared query string to load packages from")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&opts.chart, "chart", false, "include weekly chart rows in JSON output")

	return cmd
}

func (c *CLI) runShow(cmd *cobra.Command, names []string, opts showOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}
	defer rt.close()

	prog := newProgress(c.Logger)
	if opts.json {
		err = rt.store.InitializeFromQuery(ctx, names)
	} else {
		err = loadWithSpinner(ctx, rt.store, names)
	}
	if err != nil {
		return err
	}
	st := rt.store.State()
	prog.done("loaded packages", "count", len(st.Packages))

	summaries := tracker.Summaries(st)
	query := querysync.Build("", st.Packages)

	if opts.json {
		report := showReport{Packages: summaries, Query: query}
		if opts.chart {
			report.Chart = series.BuildChartData(tracker.OrderedSeries(st))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printShow(st, summaries, query)
	return nil
}

// loadWithSpinner initializes the store and shows how many packages have
// settled so far.
func loadWithSpinner(ctx context.Context, store *tracker.Store, names []string) error {
	spinner := newSpinnerWithContext(ctx, os.Stderr, fmt.Sprintf("Fetching %d packages...", len(names)))
	spinner.Start()

	unsubscribe := store.Subscribe(func(st, _ tracker.State) {
		settled := 0
		for _, name := range st.Packages {
			if s := st.Status[name]; s == tracker.StatusSuccess || s == tracker.StatusError {
				settled++
			}
		}
		spinner.SetMessage(fmt.Sprintf("Fetching packages... %d/%d", settled, len(st.Packages)))
	})
	err := store.InitializeFromQuery(ctx, names)
	unsubscribe()
	if err != nil {
		spinner.StopWithError("Fetching interrupted")
		return err
	}
	spinner.Stop()
	return nil
}

func printShow(st tracker.State, summaries []tracker.Summary, query string) {
	fmt.Println(summaryTable(summaries, -1))

	failed := 0
	for _, s := range summaries {
		if s.Error != "" {
			failed++
			printError("%s: %s", s.PackageName, StyleError.Render(s.Error))
		}
	}

	printNewline()
	switch {
	case failed == 0:
		printSuccess("Loaded %s packages", StyleNumber.Render(fmt.Sprint(len(summaries))))
	case failed == len(summaries):
		printWarning("No package could be loaded")
	default:
		printWarning("Loaded %d of %d packages", len(summaries)-failed, len(summaries))
	}
	if tracker.HasErrors(st) {
		printDetail("Run with --verbose for upstream details")
	}
	printNextStep("Share", "pkgtrack show --query '"+query+"'")
	printNextStep("Watch", "pkgtrack watch --query '"+query+"'")
}
