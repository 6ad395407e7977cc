package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alanmeadows/pullstatus/internal/sla"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	commentStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("8"))
)

// WriteText renders the report for a terminal.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("%s#%d %s", r.Project, r.Number, r.Title)))
	fmt.Fprintf(&b, "pull request sha: %s\n", r.HeadSHA)
	fmt.Fprintf(&b, "review due %s (%s)\n", r.Due.Local().Format("Mon Jan 2 15:04"), urgencyStyle(r.Urgency).Render(r.Urgency))
	if r.PreOK {
		fmt.Fprintln(&b, "PRE-OK given.")
	}
	fmt.Fprintln(&b)

	switch r.Verdict {
	case VerdictNeverReviewed:
		fmt.Fprintln(&b, warnStyle.Render("never reviewed."))
		if r.LastMaintainerComment != "" {
			fmt.Fprintln(&b, "last maintainer comment:")
			fmt.Fprintln(&b, commentStyle.Render(r.LastMaintainerComment))
		}
		writeChoices(&b, r.Choices)
	case VerdictUnreviewedCommits:
		fmt.Fprintln(&b, warnStyle.Render("unreviewed commits present."))
		fmt.Fprintf(&b, "compare: %s\n", r.ReviewCompareURL)
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "last feedback was:")
		fmt.Fprintln(&b, commentStyle.Render(r.LastFeedback))
		writeChoices(&b, r.Choices)
	default:
		fmt.Fprintf(&b, "everything reviewed, status: %s\n", r.CurrentReview)
	}
	fmt.Fprintln(&b)

	switch {
	case r.Cruise == nil || r.Cruise.Empty():
		fmt.Fprintln(&b, "no current cruises.")
	case len(r.Cruise.Successful) > 0:
		fmt.Fprintf(&b, "%s %s\n", okStyle.Render("successful cruises:"), strings.Join(r.Cruise.Successful, ", "))
	default:
		fmt.Fprintln(&b, failStyle.Render("only failing cruises."))
		fmt.Fprintf(&b, "first failing: %s\n", r.Cruise.Failing[0])
	}
	fmt.Fprintln(&b)

	if r.Merge.FastForwardable {
		fmt.Fprintln(&b, okStyle.Render("pull request is fast-forward-able."))
	} else {
		fmt.Fprintln(&b, warnStyle.Render(fmt.Sprintf("pull request must be merged, merge base is %s.", r.Merge.MergeBase)))
		fmt.Fprintf(&b, "compare: %s\n", r.Merge.CompareURL)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeChoices(b *strings.Builder, choices []string) {
	fmt.Fprintln(b, "possible choices:")
	for _, c := range choices {
		fmt.Fprintln(b, c)
	}
}

func urgencyStyle(urgency string) lipgloss.Style {
	switch urgency {
	case sla.Overdue.String():
		return failStyle
	case sla.DueNow.String():
		return warnStyle
	default:
		return okStyle
	}
}
