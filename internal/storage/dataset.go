// Package storage loads and persists the source records the demand engine
// computes from: YAML, TOML, or JSON dataset files, and a SQLite store.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// DatasetFormat is the encoding of a dataset file.
type DatasetFormat string

const (
	FormatYAML DatasetFormat = "yaml"
	FormatTOML DatasetFormat = "toml"
	FormatJSON DatasetFormat = "json"
)

// FormatForPath picks a dataset format from a file extension.
func FormatForPath(path string) (DatasetFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported dataset extension %q (use .yaml, .toml, or .json)", filepath.Ext(path))
	}
}

// FileSource reads a dataset from a single file. The dataset version is a
// hash of the file content, so any edit invalidates memoized matrices.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file the source reads.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads and decodes the dataset file.
func (s *FileSource) Load(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", s.path, err)
	}
	format, err := FormatForPath(s.path)
	if err != nil {
		return nil, err
	}
	ds, err := DecodeDataset(data, format)
	if err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", s.path, err)
	}
	ds.Version = ContentVersion(data)
	return ds, nil
}

// DecodeDataset parses dataset content and normalizes assignment dates to
// calendar dates.
func DecodeDataset(data []byte, format DatasetFormat) (*models.Dataset, error) {
	var ds models.Dataset
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	normalizeDates(&ds)
	return &ds, nil
}

// EncodeDataset serializes ds in the given format. The version field is
// not written.
func EncodeDataset(ds *models.Dataset, format DatasetFormat) ([]byte, error) {
	out := *ds
	out.Version = ""
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&out); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return encodeTOML(&out)
	case FormatJSON:
		data, err := json.MarshalIndent(&out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
}

// WriteDataset writes ds to path in the format implied by its extension.
// The file is replaced atomically while holding path.lock.
func WriteDataset(path string, ds *models.Dataset) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := EncodeDataset(ds, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating dataset dir: %w", err)
		}
	}

	unlock, err := lockFile(path + ".lock")
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing dataset %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing dataset %s: %w", path, err)
	}
	return nil
}

// ContentVersion returns a short content hash used as a dataset version.
func ContentVersion(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func normalizeDates(ds *models.Dataset) {
	for i := range ds.Assignments {
		a := &ds.Assignments[i]
		a.StartDate = calendarDate(a.StartDate)
		a.EndDate = calendarDate(a.EndDate)
	}
}

func calendarDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
