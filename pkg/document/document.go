// Package document reads and writes region documents as JSON or YAML files.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for file extensions other than .json,
// .yaml and .yml.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Decode parses data in the given format into a document root.
func Decode(data []byte, format Format) (*regions.Group, error) {
	switch format {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return regions.NewRoot(), nil
		}
		return regions.ParseJSON(data)
	case FormatYAML:
		return regions.ParseYAML(data)
	}
	return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

// Encode serializes root. JSON is indented by two spaces; both formats end
// with a newline.
func Encode(root *regions.Group, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
}

// Store loads and saves documents on the local filesystem.
type Store struct {
	logger *logrus.Entry
}

// NewStore creates a document store. A nil logger falls back to a fresh
// logrus logger.
func NewStore(logger *logrus.Entry) *Store {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Store{logger: logger.WithField("component", "document")}
}

// Load reads the document at path. A missing file yields ErrNotExist from
// the os package, wrapped.
func (s *Store) Load(ctx context.Context, path string) (*regions.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	root, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":  path,
		"items": len(root.Items),
	}).Debug("Loaded document")
	return root, nil
}

// Save writes root to path atomically: the data goes to a temporary file in
// the same directory which is then renamed over the target. The mode of an
// existing file is kept.
func (s *Store) Save(ctx context.Context, path string, root *regions.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(root, format)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":   path,
		"format": format,
		"bytes":  len(data),
	}).Debug("Saved document")
	return nil
}
