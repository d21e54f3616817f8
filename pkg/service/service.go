package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/mattsolo1/grove-axisregions/pkg/document"
	"github.com/mattsolo1/grove-axisregions/pkg/overlay"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/store"
	"github.com/sirupsen/logrus"
)

// ErrNoDocument is returned when neither an argument nor the configuration
// names a document.
var ErrNoDocument = errors.New("no document given; pass --file or set 'document' in the config")

// Service is the core region document service
type Service struct {
	Documents *document.Store
	Snapshots *store.Store
	Config    *Config

	logger *logrus.Entry
}

// Config holds service configuration
type Config struct {
	DataDir          string
	Document         string
	PlotDim          string
	DefaultGroupName string
	Watch            bool
}

// New creates a new region service
func New(config *Config, logger *logrus.Entry) (*Service, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	snapshots, err := store.NewStore(config.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("create snapshot store: %w", err)
	}

	return &Service{
		Documents: document.NewStore(logger),
		Snapshots: snapshots,
		Config:    config,
		logger:    logger.WithField("component", "service"),
	}, nil
}

// Close releases the snapshot database.
func (s *Service) Close() error {
	return s.Snapshots.Close()
}

// Logger returns the service logger for collaborators such as the watcher.
func (s *Service) Logger() *logrus.Entry {
	return s.logger
}

// ResolvePath returns the absolute document path for path, falling back to
// the configured document.
func (s *Service) ResolvePath(path string) (string, error) {
	if path == "" {
		path = s.Config.Document
	}
	if path == "" {
		return "", ErrNoDocument
	}
	if _, err := document.FormatOf(path); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// Open loads the document at path into a new session. A file that does not
// exist yet opens as an empty document and is created on the first save.
func (s *Service) Open(ctx context.Context, path string) (*Session, error) {
	path, err := s.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	root, err := s.Documents.Load(ctx, path)
	isNew := false
	if errors.Is(err, fs.ErrNotExist) {
		root, isNew, err = regions.NewRoot(), true, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	sess := &Session{
		Path:    path,
		IsNew:   isNew,
		svc:     s,
		logger:  s.logger.WithField("document", filepath.Base(path)),
		Overlay: overlay.NewRefresher(nil, s.logger, overlay.Plot{Name: "main", Dim: s.Config.PlotDim}),
	}
	if err := sess.reset(root); err != nil {
		return nil, err
	}
	if !isNew {
		sess.onDisk = sess.readOnDisk()
	}

	s.logger.WithFields(logrus.Fields{
		"path":    path,
		"new":     isNew,
		"regions": len(sess.Tree.Regions()),
	}).Debug("Opened document")
	return sess, nil
}
