package models

// TranscriptEntry is the metadata header of an archived chat transcript.
type TranscriptEntry struct {
	TranscriptID string `yaml:"transcript_id"`
	SessionID    string `yaml:"session_id"`
	Character    string `yaml:"character"`
	Turns        int    `yaml:"turns"`
	StartedAt    string `yaml:"started_at"`
	EndedAt      string `yaml:"ended_at"`
}
