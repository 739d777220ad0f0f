// Package main provides the entry point for nettraffic, a system tray
// indicator showing the current network transfer rate.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/shini4i/nettraffic/internal/config"
	"github.com/shini4i/nettraffic/internal/connectivity"
	"github.com/shini4i/nettraffic/internal/indicator"
	"github.com/shini4i/nettraffic/internal/logging"
	"github.com/shini4i/nettraffic/internal/traffic"
	"github.com/shini4i/nettraffic/internal/ui"
)

func main() {
	// Initialize structured logging
	logging.SetupFromEnv()

	manager, err := config.NewManager()
	if err != nil {
		slog.Error("Failed to initialize settings", "error", err)
		os.Exit(1)
	}

	tray := ui.NewTray()
	ctrl := indicator.New(indicator.Options{
		Source: traffic.SystemSource{},
		Sink:   tray,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := config.NewWatcher(manager.SettingsFile(), manager.Settings())
	watcher.OnChange(ctrl.HandleConfigChange)

	monitor := connectivity.NewMonitor(0)
	monitor.OnChange(ctrl.HandleConnectivityChange)

	if err := tray.OnQuit(func() {
		cancel()
		monitor.Stop()
		ctrl.Detach()
		tray.Quit()
	}); err != nil {
		slog.Error("Failed to register tray callback", "error", err)
		os.Exit(1)
	}

	ctrl.Attach()

	// Replay the persisted settings as change notifications.
	for _, kv := range manager.Settings().Pairs() {
		ctrl.HandleConfigChange(kv.Key, kv.Value)
	}

	monitor.Start()

	go func() {
		if err := watcher.Run(ctx); err != nil {
			slog.Error("Settings watcher stopped", "error", err)
		}
	}()

	// Blocks until the tray is closed.
	if err := tray.Run(); err != nil {
		slog.Error("Failed to run system tray", "error", err)
		os.Exit(1)
	}
}
