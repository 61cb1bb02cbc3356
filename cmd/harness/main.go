package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/mpetrenko/webharness/internal/application"
	"github.com/mpetrenko/webharness/internal/config"
	"github.com/mpetrenko/webharness/internal/logging"
	"github.com/mpetrenko/webharness/internal/settings"
)

const smokeOwner = "smoke"

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("webharness", "Browser automation harness - opens the target site and reports whether it is reachable")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	settingsFile := kingpinApp.Flag("settings", "Path to the JSON test settings document").String()
	remoteURL := kingpinApp.Flag("remote-url", "WebDriver endpoint to use instead of starting local driver services").String()
	artifactsDir := kingpinApp.Flag("artifacts-dir", "Directory for screenshots").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	driverPort := kingpinApp.Flag("driver-port", "Fixed port for local driver services (set 0 to pick a free port)").Default("-1").Int()
	browser := kingpinApp.Flag("browser", "Browser engine overriding the resolved settings").String()
	headless := kingpinApp.Flag("headless", "Run the browser headless regardless of settings").Bool()
	targetURL := kingpinApp.Flag("url", "Absolute URL to open instead of the base URL").String()
	environment := kingpinApp.Flag("environment", "Named environment from the settings document").String()
	screenshot := kingpinApp.Flag("screenshot", "Capture a screenshot once the page has opened").Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *settingsFile != "" {
		overrides.SettingsFile = settingsFile
	}

	if *remoteURL != "" {
		overrides.RemoteURL = remoteURL
	}

	if *artifactsDir != "" {
		overrides.ArtifactsDir = artifactsDir
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *driverPort >= 0 {
		overrides.DriverPort = driverPort
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	st, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		logger.Fatal("failed to load test settings", zap.Error(err))
	}

	if *browser != "" {
		st.Browser = *browser
	}
	if *headless {
		st.Headless = true
	}

	app := application.New(cfg, st, logger)

	if err := run(app, resolveTarget(st, *environment, *targetURL), *screenshot, logger); err != nil {
		logger.Fatal("smoke run failed", zap.Error(err))
	}
}

// resolveTarget picks the URL the smoke run opens: an explicit URL wins, then
// a named environment from the settings document, then the base URL.
func resolveTarget(st settings.Settings, environment, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if environment != "" {
		return st.EnvironmentURL(environment)
	}
	return st.BaseURL
}

// run executes the smoke check while listening for termination signals. A
// signal interrupts the run and shuts the harness down cleanly.
func run(app *application.App, target string, capture bool, logger *zap.Logger) error {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- smoke(app, target, capture, logger)
	}()

	select {
	case err := <-done:
		if closeErr := app.Close(); closeErr != nil {
			logger.Warn("shutdown incomplete", zap.Error(closeErr))
		}
		return err
	case <-quit:
		logger.Info("shutting down")
		if err := app.Close(); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
		return nil
	}
}

// smoke acquires a browser session, opens the target page, and reports its
// title. Navigation failures leave a screenshot behind when failure captures
// are enabled.
func smoke(app *application.App, target string, capture bool, logger *zap.Logger) error {
	handle, err := app.Manager().Acquire(smokeOwner)
	if err != nil {
		return err
	}

	wd := handle.Driver()
	if err := wd.Get(target); err != nil {
		if path, captureErr := app.Recorder().CaptureFailure(smokeOwner, wd); captureErr != nil {
			logger.Warn("failure screenshot not captured", zap.Error(captureErr))
		} else if path != "" {
			logger.Info("failure screenshot stored", zap.String("path", path))
		}
		return fmt.Errorf("open %s: %w", target, err)
	}

	title, err := wd.Title()
	if err != nil {
		return fmt.Errorf("read page title: %w", err)
	}

	logger.Info("page opened",
		zap.String("url", target),
		zap.String("title", title),
	)

	if capture {
		path, err := app.Recorder().Capture(smokeOwner, wd)
		if err != nil {
			return err
		}
		logger.Info("screenshot stored", zap.String("path", path))
	}

	return app.Manager().Release(smokeOwner)
}
