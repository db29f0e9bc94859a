package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lumen-io/lumen/internal/models"
)

// WriteTranscript archives a chat transcript with a YAML-ish header followed
// by one line per turn.
func WriteTranscript(character, sessionID string, startedAt time.Time, lines []string) (*models.TranscriptEntry, error) {
	if !ValidCharacterName(character) {
		return nil, fmt.Errorf("invalid character name %q", character)
	}
	dir, err := TranscriptsDir(character)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcripts dir: %w", err)
	}

	endedAt := time.Now().UTC()
	transcriptID := startedAt.UTC().Format("2006-01-02T15-04-05")
	if len(sessionID) >= 8 {
		transcriptID += "-" + sessionID[:8]
	}

	entry := &models.TranscriptEntry{
		TranscriptID: transcriptID,
		SessionID:    sessionID,
		Character:    character,
		Turns:        len(lines),
		StartedAt:    startedAt.UTC().Format(time.RFC3339),
		EndedAt:      endedAt.Format(time.RFC3339),
	}

	f, err := os.Create(filepath.Join(dir, transcriptID+".log"))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "transcript_id: %s\n", entry.TranscriptID)
	fmt.Fprintf(w, "session_id: %s\n", entry.SessionID)
	fmt.Fprintf(w, "character: %s\n", entry.Character)
	fmt.Fprintf(w, "turns: %d\n", entry.Turns)
	fmt.Fprintf(w, "started_at: %s\n", entry.StartedAt)
	fmt.Fprintf(w, "ended_at: %s\n", entry.EndedAt)
	fmt.Fprintln(w, "---")

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}

	return entry, w.Flush()
}

// ListTranscripts returns the archived transcripts of a character, newest first.
func ListTranscripts(character string) ([]*models.TranscriptEntry, error) {
	dir, err := TranscriptsDir(character)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var transcripts []*models.TranscriptEntry
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}

		entry, err := parseTranscriptHeader(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		transcripts = append(transcripts, entry)
	}

	sort.Slice(transcripts, func(i, j int) bool {
		return transcripts[i].StartedAt > transcripts[j].StartedAt
	})

	return transcripts, nil
}

// ReadTranscript returns the metadata and body of one archived transcript.
func ReadTranscript(character, transcriptID string) (*models.TranscriptEntry, string, error) {
	dir, err := TranscriptsDir(character)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(filepath.Join(dir, transcriptID+".log"))
	if err != nil {
		return nil, "", fmt.Errorf("transcript not found: %w", err)
	}

	entry, body := parseTranscriptContent(string(data))
	if entry == nil {
		return nil, "", fmt.Errorf("invalid transcript format")
	}

	return entry, body, nil
}

func parseTranscriptHeader(path string) (*models.TranscriptEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	entry := &models.TranscriptEntry{}
	inHeader := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			break
		}
		if inHeader {
			parseTranscriptHeaderLine(entry, line)
		}
	}

	if entry.TranscriptID == "" {
		entry.TranscriptID = strings.TrimSuffix(filepath.Base(path), ".log")
	}

	return entry, nil
}

func parseTranscriptContent(content string) (*models.TranscriptEntry, string) {
	lines := strings.Split(content, "\n")
	entry := &models.TranscriptEntry{}
	headerEnd := -1
	inHeader := false

	for i, line := range lines {
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			headerEnd = i
			break
		}
		if inHeader {
			parseTranscriptHeaderLine(entry, line)
		}
	}

	if headerEnd < 0 {
		return nil, ""
	}

	return entry, strings.Join(lines[headerEnd+1:], "\n")
}

func parseTranscriptHeaderLine(entry *models.TranscriptEntry, line string) {
	key, val, ok := strings.Cut(line, ": ")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	case "transcript_id":
		entry.TranscriptID = val
	case "session_id":
		entry.SessionID = val
	case "character":
		entry.Character = val
	case "turns":
		entry.Turns, _ = strconv.Atoi(val)
	case "started_at":
		entry.StartedAt = val
	case "ended_at":
		entry.EndedAt = val
	}
}
