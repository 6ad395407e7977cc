package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alanmeadows/pullstatus/internal/cruise"
	"github.com/alanmeadows/pullstatus/internal/git"
	"github.com/alanmeadows/pullstatus/internal/merge"
	"github.com/alanmeadows/pullstatus/internal/provider"
	"github.com/alanmeadows/pullstatus/internal/review"
	"github.com/alanmeadows/pullstatus/internal/status"
)

const statusUsage = "usage: pullstatus status <github pull url>"

var (
	statusOutput string
	statusDiff   bool
)

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", outputText, "Output format: text or yaml")
	statusCmd.Flags().BoolVar(&statusDiff, "diff", false, "Also list the files changed since the merge-base")
}

var statusCmd = &cobra.Command{
	Use:   "status <pull request url>",
	Short: "Show the status of a pull request",
	Long: `Report where a pull request stands.

The project's local working copy must be registered (see 'pullstatus
project add'); it is used to compute the merge-base of the head and the
default branch. The branch checked out in the working copy is restored
afterwards. Review state is read from the conversation: the last
"OK (<sha>)" or "FEEDBACK (<sha>)" written by a maintainer is the current
review. Maintainers come from the config, or default to the
authenticated GitHub user.`,
	Example: `  pullstatus status https://github.com/acme/widgets/pull/42
  pullstatus status -o yaml https://github.com/acme/widgets/pull/42`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) != 1 {
			fmt.Fprintln(out, statusUsage)
			return nil
		}
		prURL := args[0]
		project, number, err := provider.ParsePullURL(prURL)
		if err != nil {
			fmt.Fprintln(out, statusUsage)
			return nil
		}
		if err := validateOutput(statusOutput); err != nil {
			return err
		}

		// Local prerequisites first: no network until the working copy is known.
		wc, err := appConfig.WorkingCopy(project)
		if err != nil {
			return err
		}
		gw, err := git.NewGateway(ctx, wc.Path)
		if err != nil {
			return fmt.Errorf("opening working copy: %w", err)
		}
		pattern, err := appConfig.Cruise.CompileURLPattern()
		if err != nil {
			return err
		}

		backend, err := newGitHubBackend(appConfig)
		if err != nil {
			return err
		}
		api, err := buildRegistry(backend).Detect(prURL)
		if err != nil {
			return err
		}

		eval := status.NewEvaluator(status.Options{
			API:         api,
			Maintainers: review.SourceFor(appConfig.Maintainers, api),
			Merge:       merge.NewReconciler(gw),
			Cruise:      cruise.NewAggregator(cruise.NewHTTPFetcher(appConfig.Cruise.ParseTimeout()), pattern),
			Policy:      appConfig.SLA.Policy(),
			Remote:      wc.Remote,
		})
		report, err := eval.Evaluate(ctx, project, number)
		if err != nil {
			return err
		}

		var changes []git.FileChange
		if statusDiff {
			changes, err = gw.DiffNameStatus(ctx, report.Merge.MergeBase, report.HeadSHA)
			if err != nil {
				return err
			}
		}

		if statusOutput == outputYAML {
			return writeYAML(out, struct {
				status.Report `yaml:",inline"`
				Changes       []git.FileChange `yaml:"changes,omitempty"`
			}{*report, changes})
		}

		if err := report.WriteText(out); err != nil {
			return err
		}
		if statusDiff {
			fmt.Fprintln(out)
			fmt.Fprintln(out, lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("changed since %s:", review.ShortSHA(report.Merge.MergeBase))))
			for _, c := range changes {
				fmt.Fprintf(out, "%s\t%s\n", c.Status, c.Path)
			}
		}
		return nil
	},
}
