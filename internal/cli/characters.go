package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lumen-io/lumen/internal/config"
)

var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"chars"},
	Short:   "List installed characters",
	Long: `List the characters in ~/.lumen/characters. The active one is marked.
Edit a character's YAML file while lumen runs and it reloads automatically.`,
	RunE: runCharacters,
}

func runCharacters(cmd *cobra.Command, args []string) error {
	if err := config.EnsureDefaultCharacters(); err != nil {
		return fmt.Errorf("failed to install default characters: %w", err)
	}
	characters, err := config.ListCharacters()
	if err != nil {
		return fmt.Errorf("failed to list characters: %w", err)
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	for _, c := range characters {
		marker := "  "
		if c.Name == settings.Character {
			marker = styleSuccess.Render("● ")
		}
		name := lipgloss.NewStyle().Bold(true)
		if c.Color != "" {
			name = name.Foreground(lipgloss.Color(c.Color))
		}
		fmt.Printf("%s%s %s\n", marker, name.Render(c.Title()), styleHint.Render("("+c.Name+")"))
		if c.Greeting != "" {
			fmt.Printf("    %s\n", styleLabel.Render(c.Greeting))
		}
	}
	return nil
}
