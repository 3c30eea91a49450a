package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/pkg/cliui"
	"github.com/emberco/recall/pkg/settings"
)

const setLongDesc string = `Set a settings value.

Sets the given key to the provided value in the settings.toml file stored in
the .recall/ directory. Keys use dotted notation matching the TOML section
structure.

Examples:
  recall config set service.url http://127.0.0.1:5000
  recall config set context.final_memory_count 8
  recall config set capture.auto_memory false`

const setShortDesc string = "Set a settings value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(args[0], args[1], configDir)
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

func runSet(key, value, configDir string) error {
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

	err = cfger.SetValue(key, value)
	if err != nil {
		return err
	}

	fmt.Printf("  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
