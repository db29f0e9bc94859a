package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumen-io/lumen/internal/aistate"
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Show the companion's activity states",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(formatStateTable(aistate.DefaultExpiry))
	},
}

// formatStateTable lists every state with whether and when it expires.
func formatStateTable(expiry time.Duration) string {
	out := styleLabel.Render(fmt.Sprintf("%-18s %-10s %s", "STATE", "TRANSIENT", "EXPIRES")) + "\n"
	for _, s := range aistate.States() {
		transient, expires := "no", "-"
		if s.Transient() {
			transient, expires = "yes", "after "+expiry.String()+" → idle"
		}
		out += renderState(s, 18) + fmt.Sprintf(" %-10s %s\n", transient, expires)
	}
	return out
}
