package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lumen-io/lumen/internal/models"
)

// ErrCharacterNotFound is returned when no file exists for a character name.
var ErrCharacterNotFound = errors.New("character not found")

var characterNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

// ValidCharacterName reports whether name can be used as a character file name.
func ValidCharacterName(name string) bool {
	return characterNamePattern.MatchString(name)
}

// LoadCharacter loads ~/.lumen/characters/<name>.yaml.
func LoadCharacter(name string) (*models.Character, error) {
	if !ValidCharacterName(name) {
		return nil, fmt.Errorf("invalid character name: %q", name)
	}
	path, err := CharacterFile(name)
	if err != nil {
		return nil, err
	}
	if !FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, name)
	}

	var c models.Character
	if err := LoadYAML(path, &c); err != nil {
		return nil, err
	}
	c.Name = name
	return &c, nil
}

// SaveCharacter writes a character to ~/.lumen/characters/<name>.yaml.
func SaveCharacter(c *models.Character) error {
	if !ValidCharacterName(c.Name) {
		return fmt.Errorf("invalid character name: %q", c.Name)
	}
	path, err := CharacterFile(c.Name)
	if err != nil {
		return err
	}
	return SaveYAML(path, c)
}

// ListCharacters loads every character file, sorted by name. Files that fail
// to parse are skipped.
func ListCharacters() ([]*models.Character, error) {
	dir, err := CharactersDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var characters []*models.Character
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".yaml")
		c, err := LoadCharacter(name)
		if err != nil {
			continue
		}
		characters = append(characters, c)
	}

	sort.Slice(characters, func(i, j int) bool {
		return characters[i].Name < characters[j].Name
	})
	return characters, nil
}

// EnsureDefaultCharacters seeds the built-in characters when the characters
// directory has none.
func EnsureDefaultCharacters() error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}
	existing, err := ListCharacters()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, c := range models.DefaultCharacters() {
		if err := SaveCharacter(c); err != nil {
			return fmt.Errorf("failed to seed character %s: %w", c.Name, err)
		}
	}
	return nil
}

// NextCharacterName returns the character after current in name order,
// wrapping around. It returns current when fewer than two exist.
func NextCharacterName(current string) (string, error) {
	characters, err := ListCharacters()
	if err != nil {
		return "", err
	}
	if len(characters) == 0 {
		return current, nil
	}
	for i, c := range characters {
		if c.Name == current {
			return characters[(i+1)%len(characters)].Name, nil
		}
	}
	return characters[0].Name, nil
}
