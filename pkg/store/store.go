// Package store keeps named snapshots of region documents in sqlite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot matches a reference.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrAmbiguous is returned when an id prefix matches several snapshots.
	ErrAmbiguous = errors.New("snapshot reference is ambiguous")
)

// Snapshot is a saved copy of a document.
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Regions   int       `json:"regions"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Root decodes the snapshot into a fresh document root.
func (s *Snapshot) Root() (*regions.Group, error) {
	return regions.ParseJSON(s.Data)
}

// Store manages document snapshots.
type Store struct {
	db      *sql.DB
	dataDir string
	logger  *logrus.Entry
}

// NewStore opens or creates the snapshot database in dataDir.
func NewStore(dataDir string, logger *logrus.Entry) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "snapshots.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	s := &Store{
		db:      db,
		dataDir: dataDir,
		logger:  logger.WithField("component", "snapshot-store"),
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize snapshot store: %w", err)
	}

	return s, nil
}

// init creates the database schema
func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		document TEXT NOT NULL,
		regions INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_document ON snapshots(document);
	CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores root under name for the document at docPath.
func (s *Store) Save(ctx context.Context, name, docPath string, root *regions.Group) (*Snapshot, error) {
	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = time.Now().Format("2006-01-02 15:04:05")
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		Document:  absPath(docPath),
		Regions:   countRegions(root),
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	query := `
	INSERT INTO snapshots (id, name, document, regions, data, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query, snap.ID, snap.Name, snap.Document, snap.Regions, snap.Data, snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":       snap.ID,
		"name":     snap.Name,
		"document": snap.Document,
	}).Debug("Saved snapshot")
	return snap, nil
}

// List returns the snapshots of docPath, newest first. An empty docPath
// lists every snapshot.
func (s *Store) List(ctx context.Context, docPath string) ([]*Snapshot, error) {
	query := `
	SELECT id, name, document, regions, data, created_at
	FROM snapshots
	`
	var args []any
	if docPath != "" {
		query += "WHERE document = ?\n"
		args = append(args, absPath(docPath))
	}
	query += "ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Get resolves ref among the snapshots of docPath as a full id, then as a
// snapshot name (newest wins), then as a unique id prefix. An empty docPath
// searches every document.
func (s *Store) Get(ctx context.Context, docPath, ref string) (*Snapshot, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrSnapshotNotFound
	}

	const columns = `SELECT id, name, document, regions, data, created_at FROM snapshots WHERE `
	scope, scopeArgs := "", []any(nil)
	if docPath != "" {
		scope, scopeArgs = "document = ? AND ", []any{absPath(docPath)}
	}
	withScope := func(args ...any) []any {
		return append(slices.Clone(scopeArgs), args...)
	}

	queries := []string{
		columns + scope + `id = ?`,
		columns + scope + `name = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	}
	for _, q := range queries {
		snap, err := scanSnapshot(s.db.QueryRowContext(ctx, q, withScope(ref)...))
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx, columns+scope+`id LIKE ? LIMIT 2`,
		withScope(stripWildcards(ref)+"%")...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s: %w", ref, ErrSnapshotNotFound)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%s: %w", ref, ErrAmbiguous)
}

// Delete removes the snapshot ref resolves to among the snapshots of
// docPath. An empty docPath searches every document.
func (s *Store) Delete(ctx context.Context, docPath, ref string) (*Snapshot, error) {
	snap, err := s.Get(ctx, docPath, ref)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", snap.ID); err != nil {
		return nil, fmt.Errorf("delete snapshot: %w", err)
	}
	s.logger.WithField("id", snap.ID).Debug("Deleted snapshot")
	return snap, nil
}

// Close closes the snapshot database
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	snap := &Snapshot{}
	err := row.Scan(&snap.ID, &snap.Name, &snap.Document, &snap.Regions, &snap.Data, &snap.CreatedAt)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func countRegions(root *regions.Group) int {
	n := 0
	for _, item := range root.Items {
		switch v := item.(type) {
		case *regions.Region:
			n++
		case *regions.Group:
			n += countRegions(v)
		}
	}
	return n
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func stripWildcards(s string) string {
	r := strings.NewReplacer(`%`, ``, `_`, ``)
	return r.Replace(s)
}
