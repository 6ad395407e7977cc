package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/alanmeadows/pullstatus/internal/config"
	"github.com/alanmeadows/pullstatus/internal/git"
)

var projectRemote string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage project working copies",
	Long: `Register and list the local working copies of projects.

'pullstatus status' needs a working copy of the pull request's project to
compute merge-bases. Each project ("owner/repo") maps to a local clone
and the remote its default branch is pulled from.`,
	Example: `  pullstatus project add acme/widgets ~/src/widgets
  pullstatus project list`,
}

func init() {
	projectAddCmd.Flags().StringVar(&projectRemote, "remote", config.DefaultRemote, "Remote to pull the default branch from")
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
}

var projectAddCmd = &cobra.Command{
	Use:   "add [owner/repo] [path]",
	Short: "Register a working copy",
	Long: `Register the local working copy of a project in the user config.

Missing values are asked for in an interactive form. The path defaults
to the current directory and the project to the one its remote points at.`,
	Example: `  pullstatus project add
  pullstatus project add acme/widgets
  pullstatus project add acme/widgets ~/src/widgets --remote upstream`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()

		var name, path string
		path = cwd
		if len(args) > 0 {
			name = args[0]
		}
		if len(args) > 1 {
			path = args[1]
		}

		// Pre-fill the project from the working copy's remote.
		if name == "" {
			name = inferProject(cmd, path)
		}

		if len(args) < 2 {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Project (owner/repo)").
						Value(&name).
						Validate(validateProject),
					huh.NewInput().
						Title("Working copy").
						Value(&path),
					huh.NewInput().
						Title("Remote").
						Value(&projectRemote),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("form cancelled: %w", err)
			}
		}

		if err := validateProject(name); err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", path, err)
		}

		p := config.ProjectConfig{Path: abs, Remote: projectRemote}
		if err := config.AddProject(appConfig.Path, name, p); err != nil {
			return fmt.Errorf("adding project: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added project %q (%s)\n", name, abs)
		return nil
	},
}

func inferProject(cmd *cobra.Command, dir string) string {
	gw, err := git.NewGateway(cmd.Context(), dir)
	if err != nil {
		return ""
	}
	url, err := gw.RemoteURL(cmd.Context(), projectRemote)
	if err != nil {
		return ""
	}
	project, _ := git.ProjectFromRemoteURL(url)
	return project
}

func validateProject(s string) error {
	if s == "" {
		return fmt.Errorf("project is required")
	}
	owner, repo, ok := strings.Cut(s, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("project must look like owner/repo")
	}
	return nil
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered working copies",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(appConfig.Projects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No projects configured. Add one with: pullstatus project add")
			return nil
		}

		names := make([]string, 0, len(appConfig.Projects))
		for name := range appConfig.Projects {
			names = append(names, name)
		}
		sort.Strings(names)

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			p := appConfig.Projects[name]
			remote := p.Remote
			if remote == "" {
				remote = config.DefaultRemote
			}
			rows = append(rows, []string{name, p.Path, remote})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("PROJECT", "WORKING COPY", "REMOTE").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}
