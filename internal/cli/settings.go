package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lumen-io/lumen/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show global settings",
	Long: `Show the settings in ~/.lumen/settings.yaml.

Change one with 'lumen settings set <key> <value>'.`,
	RunE: runSettings,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsSetCmd.Long = "Change a setting. Keys:\n  " + strings.Join(config.SettingKeys(), "\n  ")
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	path, err := config.GlobalSettingsFile()
	if err == nil {
		fmt.Println(styleHint.Render("# " + path))
	}
	fmt.Print(string(data))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := config.SetSettingValue(settings, args[0], args[1]); err != nil {
		return err
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("%s %s = %s\n", styleSuccess.Render("Updated"), styleCommand.Render(args[0]), args[1])
	return nil
}
