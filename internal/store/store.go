// Package store keeps collation tables as append-only version histories.
//
// Each save records a new version whose validity window starts now and
// closes the previous open window at the same instant, so windows never
// overlap and the last write wins with a full audit trail. Table contents are
// kept as content-addressed snapshots.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperEdition/core/cas"
	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/sqlite"
	"github.com/FocuswithJustin/JuniperEdition/internal/logging"
)

// ErrLocked is returned when another writer holds a table's lock.
var ErrLocked = errors.New("table is locked by another writer")

// Options configures Open.
type Options struct {
	Dir         string
	DBFile      string
	LockTimeout time.Duration
}

// Store is a versioned collation table store.
type Store struct {
	db          *sql.DB
	blobs       *cas.Store
	dir         string
	lockTimeout time.Duration
	now         func() time.Time
}

// Table is a stored collation table.
type Table struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Version is one saved state of a table, valid from TimeFrom until
// TimeUntil. A nil TimeUntil marks the current version.
type Version struct {
	ID             string
	TableID        string
	TimeFrom       time.Time
	TimeUntil      *time.Time
	SnapshotSHA256 string
	SnapshotBLAKE3 string
	Author         string
	Description    string
}

// Open opens or creates a store in opts.Dir.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, apperrors.NewValidation("dir", "store directory is required")
	}
	if opts.DBFile == "" {
		opts.DBFile = "tables.db"
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 10 * time.Second
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, apperrors.NewIO("mkdir", opts.Dir, err)
	}

	blobs, err := cas.NewStore(filepath.Join(opts.Dir, "snapshots"))
	if err != nil {
		return nil, err
	}
	db, err := sqlite.Open(ctx, filepath.Join(opts.Dir, opts.DBFile))
	if err != nil {
		return nil, apperrors.NewIO("open", opts.DBFile, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &Store{
		db:          db,
		blobs:       blobs,
		dir:         opts.Dir,
		lockTimeout: opts.LockTimeout,
		now:         time.Now,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTable registers a new, empty table.
func (s *Store) CreateTable(ctx context.Context, title string) (*Table, error) {
	t := &Table{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collation_tables (id, title, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Title, t.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	logging.StoreEvent(ctx, "table_created", t.ID, "title", title)
	return t, nil
}

// GetTable returns a table by ID.
func (s *Store) GetTable(ctx context.Context, id string) (*Table, error) {
	var t Table
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM collation_tables WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("table", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}
	t.CreatedAt = time.Unix(0, created).UTC()
	return &t, nil
}

// ListTables returns all tables, oldest first.
func (s *Store) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM collation_tables ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []Table
	for rows.Next() {
		var t Table
		var created int64
		if err := rows.Scan(&t.ID, &t.Title, &created); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		t.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveVersion stores ct as the new current version of a table. The table
// must pass structural validation.
func (s *Store) SaveVersion(ctx context.Context, tableID string, ct *ctdata.CtData, author, description string) (*Version, error) {
	if _, err := s.GetTable(ctx, tableID); err != nil {
		return nil, err
	}
	if err := ct.Validate(); err != nil {
		return nil, err
	}
	snap := ct.Clone()
	snap.TableID = tableID

	var v *Version
	err := s.withTableLock(ctx, tableID, func() error {
		hashes, err := s.blobs.PutSnapshot(snap)
		if err != nil {
			return err
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		now := s.now().UTC()
		var lastFrom sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			`SELECT MAX(time_from) FROM ct_versions WHERE table_id = ?`, tableID).Scan(&lastFrom); err != nil {
			return err
		}
		if lastFrom.Valid && now.UnixNano() <= lastFrom.Int64 {
			now = time.Unix(0, lastFrom.Int64+1).UTC()
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE ct_versions SET time_until = ? WHERE table_id = ? AND time_until IS NULL`,
			now.UnixNano(), tableID); err != nil {
			return err
		}

		v = &Version{
			ID:             uuid.NewString(),
			TableID:        tableID,
			TimeFrom:       now,
			SnapshotSHA256: hashes.SHA256,
			SnapshotBLAKE3: hashes.BLAKE3,
			Author:         author,
			Description:    description,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ct_versions (id, table_id, time_from, time_until, snapshot_sha256, snapshot_blake3, author, description)
			 VALUES (?, ?, ?, NULL, ?, ?, ?, ?)`,
			v.ID, v.TableID, now.UnixNano(), v.SnapshotSHA256, v.SnapshotBLAKE3, v.Author, v.Description); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, fmt.Errorf("save version: %w", err)
	}
	logging.StoreEvent(ctx, "version_saved", tableID, "version_id", v.ID, "snapshot", v.SnapshotSHA256)
	return v, nil
}

const versionColumns = `id, table_id, time_from, time_until, snapshot_sha256, snapshot_blake3, author, description`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(r rowScanner) (*Version, error) {
	var v Version
	var from int64
	var until sql.NullInt64
	if err := r.Scan(&v.ID, &v.TableID, &from, &until, &v.SnapshotSHA256, &v.SnapshotBLAKE3, &v.Author, &v.Description); err != nil {
		return nil, err
	}
	v.TimeFrom = time.Unix(0, from).UTC()
	if until.Valid {
		u := time.Unix(0, until.Int64).UTC()
		v.TimeUntil = &u
	}
	return &v, nil
}

// Latest returns the open version of a table.
func (s *Store) Latest(ctx context.Context, tableID string) (*Version, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM ct_versions WHERE table_id = ? AND time_until IS NULL`, tableID)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("version", tableID)
	}
	return v, err
}

// VersionAt returns the version of a table that was current at t.
func (s *Store) VersionAt(ctx context.Context, tableID string, t time.Time) (*Version, error) {
	at := t.UnixNano()
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM ct_versions
		 WHERE table_id = ? AND time_from <= ? AND (time_until IS NULL OR ? < time_until)`,
		tableID, at, at)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("version", fmt.Sprintf("%s@%s", tableID, t.UTC().Format(time.RFC3339Nano)))
	}
	return v, err
}

// History returns all versions of a table, oldest first.
func (s *Store) History(ctx context.Context, tableID string) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+versionColumns+` FROM ct_versions WHERE table_id = ? ORDER BY time_from`, tableID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Load reads the table snapshot of a version.
func (s *Store) Load(v *Version) (*ctdata.CtData, error) {
	return s.blobs.GetSnapshot(v.SnapshotSHA256)
}
