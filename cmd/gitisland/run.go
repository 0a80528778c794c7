package main

import (
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/gitisland/internal/daemon"
	"github.com/jmylchreest/gitisland/internal/dbus"
	"github.com/jmylchreest/gitisland/internal/display"
	"github.com/jmylchreest/gitisland/internal/island"
	"github.com/jmylchreest/gitisland/internal/theme"
)

const appID = "io.github.jmylchreest.gitisland"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the island (default)",
	Long: `Start the island on the configured monitor and register the
io.github.jmylchreest.GitIsland control interface on the session bus.`,
	RunE: runIsland,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runIsland(cmd *cobra.Command, args []string) error {
	setupLogger(os.Stderr, slog.LevelInfo)
	logger.Info("starting gitisland", "version", version)

	app := adw.NewApplication(appID, 0)

	var (
		islandApp   *daemon.App
		overlay     *display.Overlay
		themeLoader *theme.Loader
		server      *dbus.Server
		running     atomic.Bool
	)

	shutdown := func() {
		if !running.Swap(false) {
			return
		}
		if server != nil {
			_ = server.Stop()
		}
		if islandApp != nil {
			islandApp.Stop()
		}
		if themeLoader != nil {
			themeLoader.StopHotReload()
		}
		if overlay != nil {
			overlay.Close()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		logger.Info("received signal, shutting down", "signal", sig)
		glib.IdleAdd(func() {
			shutdown()
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		adw.StyleManagerGetDefault().SetColorScheme(adw.ColorSchemePreferDark)

		dispatcher := display.Dispatcher()

		themeLoader = theme.NewLoader(dispatcher, logger.With("component", "theme"))
		if err := themeLoader.LoadTheme(cfg.Display.Theme); err != nil {
			logger.Warn("failed to load theme", "error", err)
		}
		themeLoader.Apply(nil)
		themeLoader.StartHotReload()

		var err error
		overlay, err = display.NewOverlay(&app.Application, cfg.Display,
			float64(cfg.Island.WindowHeight), logger.With("component", "display"))
		if err != nil {
			logger.Error("failed to create overlay", "error", err)
			app.Quit()
			return
		}

		var notifier *daemon.InternalNotifier
		if n, err := dbus.NewNotifier(); err != nil {
			logger.Warn("desktop notifications unavailable", "error", err)
		} else {
			notifier = daemon.NewInternalNotifier(n.Send, nil, logger)
		}

		islandApp, err = daemon.New(daemon.Options{
			Config:      cfg,
			ConfigPath:  configPath(),
			Geometry:    overlay.Geometry(),
			Source:      overlay.Source(),
			Host:        overlay,
			Dispatcher:  dispatcher,
			Notifier:    notifier,
			Logger:      logger,
			WatchConfig: true,
			WatchFlag:   true,
		})
		if err != nil {
			logger.Error("failed to create island", "error", err)
			app.Quit()
			return
		}
		overlay.Attach(islandApp)

		if err := islandApp.Start(); err != nil {
			logger.Error("failed to start island", "error", err)
			app.Quit()
			return
		}

		server = dbus.NewServer(islandApp, logger.With("component", "dbus"))
		if err := server.Start(); err != nil {
			logger.Error("failed to register control interface", "error", err)
			app.Quit()
			return
		}
		islandApp.OnStatusChange(func(c island.Change) {
			change := dbus.StatusChange{
				Old:    c.Old.String(),
				New:    c.New.String(),
				Reason: string(c.Reason),
			}
			if err := server.EmitStatusChanged(change); err != nil {
				logger.Debug("failed to emit status change", "error", err)
			}
		})

		logger.Info("gitisland ready", "dbus_interface", dbus.Interface)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		shutdown()
	})

	if status := app.Run(os.Args[:1]); status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}
	return nil
}
