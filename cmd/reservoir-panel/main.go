// Command reservoir-panel runs the controller against the simulated tank and
// shows it as a desktop front panel.
package main

import (
	"context"
	"flag"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/go-kit/kit/log/level"

	"github.com/sweeney/reservoir-monitor/internal/app"
	"github.com/sweeney/reservoir-monitor/internal/config"
	"github.com/sweeney/reservoir-monitor/internal/display"
	"github.com/sweeney/reservoir-monitor/internal/logging"
	"github.com/sweeney/reservoir-monitor/internal/panel"
)

func main() {
	var (
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		verboseFlag = flag.Bool("verbose", false, "Enable debug logging")
		displayFlag = flag.String("display", config.DisplayNone, "Additional display backend (log, ssd1306, serial, none)")
		seedFlag    = flag.Int64("seed", 1, "Simulator noise seed")
	)
	flag.Parse()

	logger, boot := logging.WithBoot(logging.New(os.Stderr, *verboseFlag))

	cfg, err := config.Load(*configFlag)
	if err != nil {
		level.Error(logger).Log("msg", "load configuration", "err", err)
		os.Exit(1)
	}

	application := fyneapp.NewWithID("com.sweeney.reservoir")
	window := application.NewWindow("Reservoir")
	window.Resize(fyne.NewSize(720, 420))

	screen := panel.NewScreen()
	a, err := app.New(app.Options{
		Config:   cfg,
		Logger:   logger,
		Boot:     boot,
		Simulate: true,
		Display:  *displayFlag,
		Screens:  []display.Display{screen},
		Seed:     *seedFlag,
	})
	if err != nil {
		level.Error(logger).Log("msg", "assemble reservoir", "err", err)
		os.Exit(1)
	}

	p := panel.New(a.Controller(), a.Tank(), screen)
	window.SetContent(p.Content())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.Run(ctx); err != nil {
			level.Error(logger).Log("msg", "run", "err", err)
		}
	}()
	go p.Run(ctx)

	window.SetOnClosed(func() {
		cancel()
		<-done
		a.Close()
	})
	window.ShowAndRun()
}
