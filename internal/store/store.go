// Package store persists gate commits to SQLite.
//
// The schema is managed by golang-migrate from SQL files embedded in the
// binary, so a fresh database file is ready after Open.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gonum.org/v1/gonum/spatial/r2"
	_ "modernc.org/sqlite"

	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/tracking"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a commit log backed by a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across connections.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	// m is not closed: closing it closes the underlying DB connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordCommit appends a commit to the log.
func (s *Store) RecordCommit(ctx context.Context, c tracking.Commit) error {
	color, err := c.Color.MarshalText()
	if err != nil {
		return fmt.Errorf("failed to encode commit color: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO commits (session_id, tracker_time, x, y, area, color)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.SessionID, c.Time, c.Position.X, c.Position.Y, c.Area, string(color))
	if err != nil {
		return fmt.Errorf("failed to insert commit: %w", err)
	}
	return nil
}

// Commits returns the commits of one session in the order they were made.
func (s *Store) Commits(ctx context.Context, sessionID string) ([]tracking.Commit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, tracker_time, x, y, area, color
		FROM commits
		WHERE session_id = ?
		ORDER BY commit_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	var commits []tracking.Commit
	for rows.Next() {
		var (
			c     tracking.Commit
			x, y  float64
			color string
		)
		if err := rows.Scan(&c.SessionID, &c.Time, &x, &y, &c.Area, &color); err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		c.Position = r2.Vec{X: x, Y: y}
		if c.Color, err = detection.ParseTrackingColor(color); err != nil {
			return nil, fmt.Errorf("commit has invalid color: %w", err)
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

// Sessions returns the IDs of all recorded sessions, most recent first.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id
		FROM commits
		GROUP BY session_id
		ORDER BY MAX(commit_id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
