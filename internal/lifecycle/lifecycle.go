// Package lifecycle wires the process together: it picks the entry path,
// prepares resources and configuration, installs the crash bridge, shows the
// main window and returns the event loop's exit code.
package lifecycle

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"fyne.io/fyne/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/vial-kb/vial-gui/internal/certs"
	"github.com/vial-kb/vial-gui/internal/config"
	"github.com/vial-kb/vial-gui/internal/crash"
	"github.com/vial-kb/vial-gui/internal/devices"
	"github.com/vial-kb/vial-gui/internal/logging"
	"github.com/vial-kb/vial-gui/internal/recorder"
	"github.com/vial-kb/vial-gui/internal/resource"
	"github.com/vial-kb/vial-gui/internal/ui"
)

const sentryFlushTimeout = 2 * time.Second

// Window is what the lifecycle needs from the main window.
type Window interface {
	SetIcon(icon fyne.Resource)
	Show()
}

// WindowBuilder constructs the main window once the application exists.
type WindowBuilder func(h *ui.Handle, chain *crash.Chain, locator resource.PathResolver) Window

// Deps holds the collaborators of Run. Zero fields get production defaults.
type Deps struct {
	// SourceDir is the base path when running from source.
	SourceDir     string
	AppFactory    ui.AppFactory
	Chain         *crash.Chain
	NewMainWindow WindowBuilder
	Recorder      func(ctx context.Context, log zerolog.Logger) int
	Stderr        io.Writer
}

func (d *Deps) setDefaults() {
	if d.Chain == nil {
		d.Chain = crash.NewChain(crash.Default)
	}
	if d.NewMainWindow == nil {
		d.NewMainWindow = DefaultMainWindow
	}
	if d.Recorder == nil {
		d.Recorder = recorder.Run
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
}

// DefaultMainWindow builds the device list window.
func DefaultMainWindow(h *ui.Handle, chain *crash.Chain, locator resource.PathResolver) Window {
	return ui.NewMainWindow(h, chain, locator, devices.NewHIDScanner(""))
}

// IsRecorder reports whether args select the recorder entry path. That is the
// case only when the recorder flag is the sole argument; unknown flags are ignored.
func IsRecorder(args []string) bool {
	if len(args) != 1 {
		return false
	}

	fs := pflag.NewFlagSet("vial", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	enabled := fs.Bool(recorder.Flag[2:], false, "record keyboard input events")
	if err := fs.Parse(args); err != nil {
		return false
	}
	return *enabled
}

// Run starts the application and returns the process exit code.
func Run(args []string, deps Deps) int {
	deps.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if IsRecorder(args) {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		log := zerolog.New(logging.ConsoleWriter(deps.Stderr)).With().Timestamp().Logger()
		return deps.Recorder(ctx, log)
	}

	runtimeCtx, detectErr := resource.Detect(deps.SourceDir)
	locator := resource.New(runtimeCtx)

	cfg, cfgErr := config.Load(locator.Resolve(config.FileName))
	if cfgErr != nil {
		cfg = config.DefaultConfig()
	}

	bundleSet, certErr := certs.EnsureBundle(locator.Resolve(cfg.CABundle), certs.SystemLocations)

	handle := ui.NewHandle(cfg.Identity, deps.AppFactory)
	handle.App()

	log := logging.Setup(cfg.Log)
	if detectErr != nil {
		log.Warn().Err(detectErr).Msg("Failed to detect runtime context")
	}
	if certErr != nil {
		log.Warn().Err(certErr).Msg("Failed to configure CA bundle")
	} else if bundleSet {
		log.Info().Str(certs.EnvCertFile, os.Getenv(certs.EnvCertFile)).Msg("Using bundled CA certificates")
	}
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("Using default configuration")
	}
	log.Info().
		Bool("frozen", runtimeCtx.Frozen).
		Str("base", runtimeCtx.BasePath).
		Str("version", cfg.Identity.Version).
		Msg("Starting " + cfg.Identity.Name)

	chain := deps.Chain
	if cfg.Sentry.DSN != "" {
		hub, err := crash.NewSentryHub(crash.SentryOptions{
			DSN:         cfg.Sentry.DSN,
			Release:     cfg.Identity.Version,
			Environment: cfg.Sentry.Environment,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Crash reporting disabled")
		} else {
			chain.Replace(crash.SentryHandler(hub, sentryFlushTimeout, chain.Current()))
		}
	}

	bridge := crash.NewBridge(chain, crash.LoopFunc(handle.Do), handle.Presenter,
		crash.WithLogger(log),
		crash.WithInterruptHandler(handle.Interrupt),
	)
	if err := bridge.Install(); err != nil {
		log.Error().Err(err).Msg("Failed to install crash bridge")
	}
	chain.Notify(ctx)

	win := buildWindow(chain, func() Window {
		return deps.NewMainWindow(handle, chain, locator)
	})
	if win == nil {
		log.Error().Msg("Failed to create main window")
		handle.QuitAfterReports(1)
		return handle.Run()
	}

	iconPath := locator.Resolve(cfg.IconPath)
	if icon, err := fyne.LoadResourceFromPath(iconPath); err != nil {
		log.Warn().Err(err).Str("path", iconPath).Msg("Failed to load window icon")
	} else {
		win.SetIcon(icon)
	}

	win.Show()
	code := handle.Run()
	log.Info().Int("code", code).Msg("Event loop finished")
	return code
}

// buildWindow runs build, reporting a panic to chain and returning nil.
func buildWindow(chain *crash.Chain, build func() Window) (win Window) {
	defer chain.Recover()
	return build()
}
