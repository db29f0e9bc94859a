package tray

import (
	"strings"
	"testing"

	"github.com/lumen-io/lumen/internal/aistate"
	"github.com/lumen-io/lumen/internal/mic"
)

func TestEveryStateHasGlyphAndLabel(t *testing.T) {
	seen := map[string]aistate.State{}
	for _, s := range aistate.States() {
		g := formatTitle(s)
		if g == "?" {
			t.Errorf("%v has no glyph", s)
		}
		if prev, dup := seen[g]; dup {
			t.Errorf("%v and %v share glyph %q", prev, s, g)
		}
		seen[g] = s

		if label := stateLabel(s); label == s.String() {
			t.Errorf("%v has no display label", s)
		}
	}
	if got := formatTitle(aistate.State(42)); got != "?" {
		t.Errorf("formatTitle(invalid) = %q", got)
	}
}

func TestFormatTooltip(t *testing.T) {
	tests := []struct {
		character string
		state     aistate.State
		micOn     bool
		want      string
	}{
		{"Lumi", aistate.Idle, false, "Lumi: Idle"},
		{"Lumi", aistate.Listening, true, "Lumi: Listening (mic on)"},
		{"", aistate.Loading, false, "Lumen: Loading"},
		{"Bolt", aistate.Waiting, false, "Bolt: Waiting for you"},
	}

	for _, tt := range tests {
		if got := formatTooltip(tt.character, tt.state, tt.micOn); got != tt.want {
			t.Errorf("formatTooltip(%q, %v, %v) = %q, want %q", tt.character, tt.state, tt.micOn, got, tt.want)
		}
	}
}

func TestFormatStatus(t *testing.T) {
	got := formatStatus(aistate.ThinkingSpeaking)
	if !strings.HasPrefix(got, formatTitle(aistate.ThinkingSpeaking)) || !strings.HasSuffix(got, "Thinking / speaking") {
		t.Errorf("formatStatus = %q", got)
	}
}

func TestMicTitle(t *testing.T) {
	sw := mic.NewSwitch(false)
	b := sw.Bridge()
	if got := micTitle(b); got != "🔇 Mic off" {
		t.Errorf("micTitle(off) = %q", got)
	}
	sw.Toggle()
	if got := micTitle(b); got != "🎙 Mic on" {
		t.Errorf("micTitle(on) = %q", got)
	}
	if got := micTitle(nil); got != "🔇 Mic off" {
		t.Errorf("micTitle(nil) = %q", got)
	}
}
