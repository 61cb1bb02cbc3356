package application

import (
	"go.uber.org/zap"

	"github.com/mpetrenko/webharness/internal/artifacts"
	"github.com/mpetrenko/webharness/internal/config"
	"github.com/mpetrenko/webharness/internal/driver"
	"github.com/mpetrenko/webharness/internal/service"
	"github.com/mpetrenko/webharness/internal/settings"
)

// App encapsulates the harness dependencies: the resolved test settings, the
// driver service supervisor, the browser session manager, and the artifacts
// recorder.
type App struct {
	settings   settings.Settings
	supervisor *service.Supervisor
	manager    *driver.Manager
	recorder   *artifacts.Recorder
	logger     *zap.Logger
}

// New initializes the harness with all dependencies from the provided
// configuration and resolved settings.
func New(cfg config.Config, st settings.Settings, logger *zap.Logger) *App {
	supervisor := service.New(cfg, logger)
	manager := driver.NewManager(st, supervisor.ExecutorURL, logger)
	recorder := artifacts.NewRecorder(cfg.ArtifactsDir, st.ScreenshotOnFailure, logger)

	return &App{
		settings:   st,
		supervisor: supervisor,
		manager:    manager,
		recorder:   recorder,
		logger:     logger,
	}
}

// Settings returns the resolved test settings the harness runs with.
func (a *App) Settings() settings.Settings {
	return a.settings
}

// Manager returns the browser session manager.
func (a *App) Manager() *driver.Manager {
	return a.manager
}

// Recorder returns the artifacts recorder.
func (a *App) Recorder() *artifacts.Recorder {
	return a.recorder
}

// Close quits every live browser session and stops the driver services. The
// first release error is reported, but shutdown always runs to completion.
func (a *App) Close() error {
	err := a.manager.ReleaseAll()
	a.supervisor.Stop()
	return err
}
