// Package buildinfo holds version information injected at build time via ldflags:
//
//	-X github.com/lumen-io/lumen/internal/buildinfo.Version=1.2.0
package buildinfo

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Summary returns "Version (Codename)", or just the version when no
// codename was injected.
func Summary() string {
	if Codename == "" || Codename == "unknown" {
		return Version
	}
	return Version + " (" + Codename + ")"
}
