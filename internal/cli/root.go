// Package cli implements the lumen CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lumen-io/lumen/internal/analytics"
	"github.com/lumen-io/lumen/internal/tui"
)

var (
	flagCharacter string
	flagMic       bool
)

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Chat with an animated AI companion",
	Long: `Lumen is a terminal companion with an animated avatar, a chat bubble
and a microphone switch. Every surface follows one shared activity state:
idle, thinking/speaking, interrupted, loading, listening or waiting.

Run without arguments to open the chat.`,
	SilenceUsage: true,
	RunE:         runLumen,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&flagCharacter, "character", "c", "", "Character to chat with (overrides settings)")
	rootCmd.Flags().BoolVar(&flagMic, "mic", false, "Start with the microphone on")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statesCmd)
	rootCmd.AddCommand(transcriptsCmd)
	rootCmd.AddCommand(trayCmd)
	rootCmd.AddCommand(versionCmd)
}

func runLumen(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("lumen needs an interactive terminal (try 'lumen tray' or 'lumen --help')")
	}

	settings, err := startupSettings(cmd, flagCharacter, flagMic)
	if err != nil {
		return err
	}

	a, err := newApp(settings)
	if err != nil {
		return err
	}
	defer a.Close()

	a.analytics.Track(analytics.EventAppStarted, nil)
	return tui.Run(a.session, settings)
}
