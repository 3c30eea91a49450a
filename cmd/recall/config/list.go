package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/pkg/settings"
)

const listLongDesc string = `List all settings values.

Displays all settings keys and their current values from the settings.toml
file stored in the .recall/ directory.

Examples:
  recall config list`

const listShortDesc string = "List all settings values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(configDir)
		},
	}

	return cmd
}

func runList(configDir string) error {
	cfger, err := settings.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		fmt.Printf("Using settings file: %s\n\n", target)
	} else {
		fmt.Print("No settings file found. Using default settings.\n\n")
	}

	keys := settings.ValidSettingsKeys()

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range keys {
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}

	for _, key := range keys {
		value, err := cfger.GetValue(key)
		if err != nil {
			return err
		}

		if value == "" {
			fmt.Printf("%-*s = <not set>\n", maxLen, key)
		} else {
			fmt.Printf("%-*s = %q\n", maxLen, key, value)
		}
	}

	return nil
}
