package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alanmeadows/pullstatus/internal/config"
	"github.com/alanmeadows/pullstatus/internal/logging"
)

var (
	verbose    bool
	configPath string
	appConfig  *config.Config
	rootCmd    = &cobra.Command{
		Use:   "pullstatus",
		Short: "Review status, due dates and mergeability of GitHub pull requests",
		Long: `pullstatus tells a maintainer where a pull request stands.

For a single pull request it reports the authoritative review, whether
commits were pushed after it, when the next review is due, whether the
head fast-forwards onto the default branch and what the CI reports say.
The overview command lists every pull request waiting on a maintainer,
ordered by due date.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the user config file (default ~/.config/pullstatus/pullstatus.jsonc)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg
		return nil
	}

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(projectCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
