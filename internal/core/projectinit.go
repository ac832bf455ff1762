package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/valter-silva-au/staffplan/internal/storage"
)

// InitConfig holds the parameters for initializing a staffplan workspace.
type InitConfig struct {
	BasePath    string
	DatasetFile string // relative to BasePath; extension picks the format
	ExportDir   string
	Start       time.Time
	// Sample writes a small example dataset when the dataset file is missing.
	Sample bool
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer creates the configuration and dataset files of a
// workspace.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct {
	configTemplate *template.Template
}

// NewProjectInitializer creates a new ProjectInitializer.
func NewProjectInitializer() ProjectInitializer {
	return &projectInitializer{
		configTemplate: template.Must(template.New("config").Parse(configTemplate)),
	}
}

const configTemplate = `# staffplan configuration
dataset:
  driver: file
  path: {{ .DatasetFile }}
horizon:
  # start: "{{ .Start }}"
  months: {{ .Months }}
default_grouping: skill
log:
  level: info
export:
  dir: {{ .ExportDir }}
  options:
    include_task_breakdown: true
    include_client_summary: true
cache:
  max_entries: {{ .CacheEntries }}
`

// Init writes .staffplan.yaml and, optionally, a sample dataset. It is safe
// to run on an existing workspace: files that already exist are skipped.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	if config.BasePath == "" {
		config.BasePath = "."
	}
	if config.DatasetFile == "" {
		config.DatasetFile = "staffplan.yaml"
	}
	if config.ExportDir == "" {
		config.ExportDir = "exports"
	}
	if config.Start.IsZero() {
		config.Start = time.Now()
	}
	if _, err := storage.FormatForPath(config.DatasetFile); err != nil {
		return nil, fmt.Errorf("initializing workspace: %w", err)
	}

	for _, dir := range []string{config.BasePath, filepath.Join(config.BasePath, config.ExportDir)} {
		created, err := ensureDir(dir)
		if err != nil {
			return nil, fmt.Errorf("initializing workspace: creating %s: %w", dir, err)
		}
		if created {
			result.Created = append(result.Created, dir)
		}
	}

	configPath := filepath.Join(config.BasePath, ConfigFileName+".yaml")
	err := pi.writeFileIfNotExists(configPath, func() ([]byte, error) {
		var buf bytes.Buffer
		data := map[string]any{
			"DatasetFile":  config.DatasetFile,
			"ExportDir":    config.ExportDir,
			"Start":        MonthDescriptorFor(config.Start).Key,
			"Months":       DefaultHorizonMonths,
			"CacheEntries": DefaultCacheEntries,
		}
		if err := pi.configTemplate.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("rendering config: %w", err)
		}
		return buf.Bytes(), nil
	}, result)
	if err != nil {
		return nil, err
	}

	if config.Sample {
		datasetPath := filepath.Join(config.BasePath, config.DatasetFile)
		err := pi.writeFileIfNotExists(datasetPath, func() ([]byte, error) {
			format, err := storage.FormatForPath(datasetPath)
			if err != nil {
				return nil, err
			}
			return storage.EncodeDataset(storage.SampleDataset(config.Start), format)
		}, result)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func (pi *projectInitializer) writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}
