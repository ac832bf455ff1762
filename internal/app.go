// Package internal provides the App struct that wires all components of
// staffplan together and initializes the CLI layer.
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/staffplan/internal/cli"
	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/observability"
	"github.com/valter-silva-au/staffplan/internal/storage"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// EventLogFile is the JSONL event log kept in the workspace root.
const EventLogFile = ".staffplan_events.jsonl"

// App holds all service dependencies for staffplan.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	Source core.DataSource
	SQLite *storage.SQLiteStore

	// Core services
	DemandSvc   core.DemandService
	ProjectInit core.ProjectInitializer

	// Observability
	Logger   *observability.RuntimeLogger
	EventLog observability.EventLog
}

// NewApp creates and wires all components of staffplan. basePath is the
// workspace root (the directory holding .staffplan.yaml).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	logFile := cfg.Log.File
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(basePath, logFile)
	}
	app.Logger, err = observability.NewRuntimeLogger(os.Stderr, observability.LoggerOptions{
		Level: cfg.Log.Level,
		File:  logFile,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFile))
	if err != nil {
		// Non-fatal: run without an event log.
		app.Logger.Warn("event log disabled", "err", err)
		app.EventLog = nil
	}
	var events core.EventLogger
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog}
	}

	// --- Storage layer ---
	datasetPath := cfg.Dataset.Path
	if !filepath.IsAbs(datasetPath) {
		datasetPath = filepath.Join(basePath, datasetPath)
	}
	switch cfg.Dataset.Driver {
	case "sqlite":
		app.SQLite, err = storage.OpenSQLite(datasetPath)
		if err != nil {
			return nil, fmt.Errorf("opening dataset: %w", err)
		}
		app.Source = app.SQLite
	default:
		app.Source = storage.NewFileSource(datasetPath)
	}

	// --- Core services ---
	app.DemandSvc = core.NewDemandService(app.Source,
		core.WithLogger(app.Logger),
		core.WithEventLogger(events),
		core.WithCacheEntries(cfg.Cache.MaxEntries),
	)
	app.ProjectInit = core.NewProjectInitializer()

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.ConfigMgr = app.ConfigMgr
	cli.DemandSvc = app.DemandSvc
	cli.Source = app.Source
	cli.SQLiteStore = app.SQLite
	cli.ProjectInit = app.ProjectInit
	cli.Logger = app.Logger
	cli.EventLog = app.EventLog
	if events != nil {
		cli.Events = events
	}

	return app, nil
}

// Close releases resources held by the App.
func (a *App) Close() error {
	var errs []error
	if a.SQLite != nil {
		errs = append(errs, a.SQLite.Close())
	}
	if a.EventLog != nil {
		errs = append(errs, a.EventLog.Close())
	}
	if a.Logger != nil {
		errs = append(errs, a.Logger.Close())
	}
	return errors.Join(errs...)
}

// ResolveBasePath determines the workspace root.
// It checks for the STAFFPLAN_HOME env var, then walks up from the current
// directory looking for .staffplan.yaml, then falls back to the current
// directory.
func ResolveBasePath() string {
	if home := os.Getenv("STAFFPLAN_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
