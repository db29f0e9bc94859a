package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-io/lumen/internal/config"
)

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts [character]",
	Short: "List saved chat transcripts",
	Long: `List the transcripts saved when a chat ends (new chat or quit), newest first.
Defaults to the active character.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranscripts,
}

var transcriptsShowCmd = &cobra.Command{
	Use:   "show <id> [character]",
	Short: "Print a saved transcript",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runTranscriptsShow,
}

func init() {
	transcriptsCmd.AddCommand(transcriptsShowCmd)
}

// characterArg returns args[i] or the character named in settings.
func characterArg(args []string, i int) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	return settings.Character, nil
}

func runTranscripts(cmd *cobra.Command, args []string) error {
	character, err := characterArg(args, 0)
	if err != nil {
		return err
	}
	entries, err := config.ListTranscripts(character)
	if err != nil {
		return fmt.Errorf("failed to list transcripts: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No transcripts for %s yet.\n", character)
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %s  %s\n",
			styleCommand.Render(e.TranscriptID),
			styleLabel.Render(fmt.Sprintf("%d turns", e.Turns)),
			styleHint.Render(e.EndedAt))
	}
	fmt.Println()
	fmt.Println(styleHint.Render("Show one with: lumen transcripts show <id>"))
	return nil
}

func runTranscriptsShow(cmd *cobra.Command, args []string) error {
	character, err := characterArg(args, 1)
	if err != nil {
		return err
	}
	entry, body, err := config.ReadTranscript(character, args[0])
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	fmt.Printf("%s %s\n", styleBrand.Render(entry.Character), styleHint.Render(entry.StartedAt))
	fmt.Println()
	fmt.Print(body)
	return nil
}
