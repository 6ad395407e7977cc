package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/alanmeadows/pullstatus/internal/overview"
	"github.com/alanmeadows/pullstatus/internal/review"
	"github.com/alanmeadows/pullstatus/internal/sla"
)

// errNoRepos is returned when neither arguments nor config name a repository.
var errNoRepos = errors.New("no repositories: pass owner/repo arguments or set overview.repos")

var (
	overviewAll    bool
	overviewOutput string
)

func init() {
	overviewCmd.Flags().BoolVar(&overviewAll, "all", false, "Also list pull requests that do not need review")
	overviewCmd.Flags().StringVarP(&overviewOutput, "output", "o", outputText, "Output format: text or yaml")
}

var overviewCmd = &cobra.Command{
	Use:   "overview [owner/repo ...]",
	Short: "List pull requests waiting on a maintainer, by due date",
	Long: `List the open pull requests of the given repositories (or overview.repos
from the config) that need review, ordered by due date.

Only pull requests against the repository's default branch that were
updated within overview.max_age are considered. A first review is due
sla.first_review after the pull request was opened; a re-review is due
sla.re_review after the last status comment.

Pull requests that could not be evaluated are listed after the table and
make the command exit non-zero.`,
	Example: `  pullstatus overview acme/widgets acme/gadgets
  pullstatus overview --all -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		repos := args
		if len(repos) == 0 {
			repos = appConfig.Overview.Repos
		}
		if len(repos) == 0 {
			return errNoRepos
		}
		if err := validateOutput(overviewOutput); err != nil {
			return err
		}

		backend, err := newGitHubBackend(appConfig)
		if err != nil {
			return err
		}

		builder := overview.NewBuilder(overview.Options{
			API:         backend,
			Maintainers: review.SourceFor(appConfig.Maintainers, backend),
			Policy:      appConfig.SLA.Policy(),
			MaxAge:      appConfig.Overview.ParseMaxAge(),
			Parallelism: appConfig.Overview.EffectiveParallelism(),
			All:         overviewAll,
		})
		result, buildErr := builder.Build(cmd.Context(), repos)
		if result == nil {
			return buildErr
		}

		if overviewOutput == outputYAML {
			if err := writeYAML(out, result); err != nil {
				return err
			}
		} else {
			renderOverview(cmd, result)
		}

		if buildErr != nil {
			return fmt.Errorf("%d of the requested pull requests or repositories could not be evaluated: %w",
				len(result.Failures), buildErr)
		}
		return nil
	},
}

func renderOverview(cmd *cobra.Command, result *overview.Result) {
	out := cmd.OutOrStdout()

	if len(result.Entries) == 0 {
		fmt.Fprintln(out, "No pull requests need review.")
	} else {
		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)
		overdueStyle := cellStyle.Foreground(lipgloss.Color("1"))

		rows := make([][]string, 0, len(result.Entries))
		for _, e := range result.Entries {
			rows = append(rows, []string{
				e.Due.Local().Format("Jan 2 15:04"),
				fmt.Sprintf("%s#%d", e.Project, e.Number),
				e.Title,
				e.Author,
				strconv.Itoa(e.ChangedLines),
				strings.Join(e.Flags, " "),
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("DUE", "PULL REQUEST", "TITLE", "AUTHOR", "LINES", "FLAGS").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if row >= 0 && row < len(result.Entries) && result.Entries[row].Urgency == sla.Overdue.String() {
					return overdueStyle
				}
				return cellStyle
			})
		fmt.Fprintln(out, t)

		for _, e := range result.Entries {
			fmt.Fprintf(out, "%s#%d %s\n", e.Project, e.Number, e.URL)
		}
	}

	if len(result.Failures) > 0 {
		failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
		fmt.Fprintln(out)
		fmt.Fprintln(out, failStyle.Render("could not evaluate:"))
		for _, f := range result.Failures {
			fmt.Fprintf(out, "  %s\n", f.Error)
		}
	}
}
