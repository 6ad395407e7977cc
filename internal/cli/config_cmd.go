package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alanmeadows/pullstatus/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pullstatus configuration",
	Long:  `Show and modify pullstatus configuration values.`,
}

var (
	configJSONFlag bool
	configRepoFlag bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output raw JSON without formatting")
	configSetCmd.Flags().BoolVar(&configRepoFlag, "repo", false, "Write to .pullstatus/pullstatus.jsonc in the repository root instead of the user config")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Redact secrets before display.
		redacted := redactConfig(appConfig)

		var data []byte
		var err error
		if configJSONFlag {
			data, err = json.Marshal(redacted)
		} else {
			data, err = json.MarshalIndent(redacted, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// redactConfig returns a copy of the config with secret fields masked.
func redactConfig(cfg *config.Config) *config.Config {
	copy := *cfg
	if copy.GitHub.Token != "" {
		copy.GitHub.Token = "***"
	}
	return &copy
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value using a dotted key path.

The value is written to the user config file (see --config), or with
--repo to .pullstatus/pullstatus.jsonc in the repository root. The file
is created if it does not exist.

Note: JSONC comments are not preserved on write.

Examples:
  pullstatus config set sla.first_review 72h
  pullstatus config set overview.parallelism 4
  pullstatus config set --repo maintainers.-1 kostia`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := config.ParseValue(args[1])

		path := appConfig.Path
		if configRepoFlag {
			repoRoot := config.RepoRoot()
			if repoRoot == "" {
				return fmt.Errorf("not in a git repository")
			}
			path = filepath.Join(repoRoot, ".pullstatus", "pullstatus.jsonc")
		}

		if err := config.Set(path, key, value); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, value, path)
		return nil
	},
}
