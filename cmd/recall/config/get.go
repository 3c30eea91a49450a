package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/pkg/cliui"
	"github.com/emberco/recall/pkg/settings"
)

const getLongDesc string = `Get a settings value.

Reads the value for the given key from the settings.toml file stored in the
.recall/ directory. Keys use dotted notation matching the TOML section
structure.

Examples:
  recall config get service.url
  recall config get context.final_memory_count`

const getShortDesc string = "Get a settings value"

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(args[0], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return settings.ValidSettingsKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runGet(key, configDir string) error {
	if !settings.IsValidSettingsKey(key) {
		return fmt.Errorf("unknown settings key: %q\n\nValid keys: %s",
			key, strings.Join(settings.ValidSettingsKeys(), ", "))
	}

	cfger, err := settings.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		fmt.Printf("\n  %s %s\n\n",
			cliui.KeyStyle.Render("Settings file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No settings file found. Using defaults."))
	}

	value, err := cfger.GetValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
	} else {
		fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(value))
	}

	return nil
}
