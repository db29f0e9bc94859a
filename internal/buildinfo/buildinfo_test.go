package buildinfo

import "testing"

func TestSummary(t *testing.T) {
	defer func(v, c string) { Version, Codename = v, c }(Version, Codename)

	tests := []struct {
		version, codename, want string
	}{
		{"dev", "unknown", "dev"},
		{"1.2.0", "", "1.2.0"},
		{"1.2.0", "Glow", "1.2.0 (Glow)"},
	}
	for _, tt := range tests {
		Version, Codename = tt.version, tt.codename
		if got := Summary(); got != tt.want {
			t.Errorf("Summary() with %q/%q = %q, want %q", tt.version, tt.codename, got, tt.want)
		}
	}
}
