package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumen-io/lumen/internal/analytics"
	"github.com/lumen-io/lumen/internal/config"
	"github.com/lumen-io/lumen/internal/models"
	"github.com/lumen-io/lumen/internal/tray"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run Lumen in the system tray",
	Long: `Run Lumen as a system tray icon. The icon and tooltip follow the
companion's activity state; the menu toggles the microphone and starts a new chat.`,
	RunE: runTray,
}

var trayStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the tray is running",
	RunE:  runTrayStatus,
}

var trayStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running tray",
	RunE:  runTrayStop,
}

func init() {
	trayCmd.Flags().StringVarP(&flagCharacter, "character", "c", "", "Character to load (overrides settings)")
	trayCmd.Flags().BoolVar(&flagMic, "mic", false, "Start with the microphone on")

	trayCmd.AddCommand(trayStatusCmd)
	trayCmd.AddCommand(trayStopCmd)
}

// runTray blocks the main goroutine in the tray loop.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runTray(cmd *cobra.Command, args []string) error {
	log.SetPrefix("[lumen-tray] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	running, info, err := config.IsTrayRunning()
	if err != nil {
		return fmt.Errorf("failed to check tray status: %w", err)
	}
	if running {
		return fmt.Errorf("tray already running (PID %d)", info.PID)
	}

	settings, err := startupSettings(cmd, flagCharacter, flagMic)
	if err != nil {
		return err
	}
	a, err := newApp(settings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())

	onStart := func() {
		if err := config.SaveTrayInfo(models.NewTrayInfo(os.Getpid(), settings.Character)); err != nil {
			log.Printf("Failed to write tray info: %v", err)
		}
		a.analytics.Track(analytics.EventAppStarted, nil)

		go func() {
			if err := a.session.Start(ctx, settings.Character); err != nil {
				log.Printf("Failed to load %s: %v", settings.Character, err)
				return
			}
			log.Printf("Tray started with %s (PID %d)", settings.Character, os.Getpid())
		}()

		// Handle OS signals: quit tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("Received signal %v, shutting down...", sig)
			tray.Quit()
		}()
	}

	onExit := func() {
		cancel()
		if _, err := a.session.Archive(); err != nil {
			log.Printf("Failed to save transcript: %v", err)
		}
		a.Close()

		if err := config.RemoveTrayInfo(); err != nil {
			log.Printf("Failed to remove tray info: %v", err)
		}
		fmt.Println("Tray stopped")
	}

	// This blocks the main goroutine until tray exits.
	tray.Run(a.session, onStart, onExit, tray.Quit)
	return nil
}

func runTrayStatus(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsTrayRunning()
	if err != nil {
		return fmt.Errorf("failed to check tray status: %w", err)
	}

	if !running || info == nil {
		fmt.Println("Tray is not running.")
		return nil
	}

	uptime := time.Since(info.StartedAt).Truncate(time.Second)

	fmt.Println(styleSuccess.Render("Tray is running."))
	fmt.Printf("  %s %s\n", styleLabel.Render("Character:"), styleValue.Render(info.Character))
	fmt.Printf("  %s %s\n", styleLabel.Render("PID:      "), styleValue.Render(fmt.Sprint(info.PID)))
	fmt.Printf("  %s %s\n", styleLabel.Render("Uptime:   "), styleValue.Render(uptime.String()))
	return nil
}

func runTrayStop(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsTrayRunning()
	if err != nil {
		return fmt.Errorf("failed to check tray status: %w", err)
	}

	if !running || info == nil {
		fmt.Println("Tray is not running.")
		return nil
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("failed to find tray process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	// Poll for shutdown (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		stillRunning, _, err := config.IsTrayRunning()
		if err == nil && !stillRunning {
			fmt.Println("Tray stopped.")
			return nil
		}
	}

	return fmt.Errorf("tray did not stop within timeout")
}
