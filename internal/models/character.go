package models

// DefaultCharacterName is the character used when settings name none.
const DefaultCharacterName = "lumi"

// Character is a companion persona.
// This corresponds to ~/.lumen/characters/<name>.yaml.
type Character struct {
	Version     int    `yaml:"version"`
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Color       string `yaml:"color"` // Hex color for the avatar and chat bubble
	Greeting    string `yaml:"greeting"`
	// Replies are cycled by the offline responder; "{input}" is replaced
	// with the user's message.
	Replies []string `yaml:"replies,omitempty"`
	// Avatar maps an activity state name to animation frames.
	Avatar map[string][]string `yaml:"avatar,omitempty"`
}

// Title returns the display name, falling back to the file name.
func (c *Character) Title() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// Frames returns the avatar frames for a state name, or nil.
func (c *Character) Frames(state string) []string {
	if c == nil || c.Avatar == nil {
		return nil
	}
	return c.Avatar[state]
}

// DefaultCharacters returns the built-in characters seeded on first run.
func DefaultCharacters() []*Character {
	return []*Character{
		{
			Version:     1,
			Name:        "lumi",
			DisplayName: "Lumi",
			Color:       "#7AA2F7",
			Greeting:    "Hi! I'm Lumi. What's on your mind?",
			Replies: []string{
				"You said \"{input}\". Tell me more!",
				"Hmm, \"{input}\"... that's interesting.",
				"I'm listening. \"{input}\", got it.",
			},
			Avatar: map[string][]string{
				"idle":              {"(◕‿◕)", "(◕‿◕)", "(-‿-)"},
				"thinking-speaking": {"(◕o◕)", "(◕O◕)", "(◕o◕)", "(◕‿◕)"},
				"interrupted":       {"(◕_◕)!"},
				"loading":           {"( ･ _ ･ )", "( ･ _ ･)", "(･ _ ･ )"},
				"listening":         {"(◕ᴗ◕)♪", "(◕ᴗ◕) ♪"},
				"waiting":           {"(◕‿◕)…", "(◕‿◕).."},
			},
		},
		{
			Version:     1,
			Name:        "bolt",
			DisplayName: "Bolt",
			Color:       "#E0AF68",
			Greeting:    "Bolt online. Ready when you are.",
			Replies: []string{
				"Acknowledged: {input}.",
				"Processing \"{input}\". Done.",
			},
			Avatar: map[string][]string{
				"idle":              {"[■_■]"},
				"thinking-speaking": {"[■o■]", "[■O■]"},
				"interrupted":       {"[■!■]"},
				"loading":           {"[···]", "[ ··]", "[  ·]"},
				"listening":         {"[■_■]))"},
				"waiting":           {"[■_■]?"},
			},
		},
	}
}
