package cli

import (
	"time"

	"github.com/valter-silva-au/staffplan/internal/core"
	"github.com/valter-silva-au/staffplan/internal/observability"
	"github.com/valter-silva-au/staffplan/internal/storage"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath  string
	Config    *models.GlobalConfig
	ConfigMgr core.ConfigurationManager
	DemandSvc core.DemandService
	Source    core.DataSource
	Logger    core.Logger
	EventLog  observability.EventLog
	Events    core.EventLogger

	// SQLiteStore is set when dataset.driver is sqlite.
	SQLiteStore *storage.SQLiteStore

	// Now is the clock used for default horizons and export filenames.
	Now = time.Now
)

// requestDefaults derives request defaults from the loaded configuration.
func requestDefaults() core.RequestDefaults {
	d := core.RequestDefaults{Now: Now}
	if Config != nil {
		d.Grouping = Config.DefaultGrouping
		d.Start = Config.Horizon.Start
		d.Months = Config.Horizon.Months
	}
	return d
}

func logEvent(eventType string, data map[string]any) {
	if Events != nil {
		_ = Events.LogEvent(eventType, data)
	}
}
