package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jaki95/set-workshop/internal/domain"
)

// SQLiteStore implements Store on a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS workshop (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	snapshot   TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS sets (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	snapshot   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS profiles (
	id  TEXT PRIMARY KEY,
	doc TEXT NOT NULL
);
`

// NewSQLiteStore opens (and, if needed, initialises) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveWorkshop implements Store.
func (s *SQLiteStore) SaveWorkshop(ctx context.Context, state *domain.WorkshopState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode workshop state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workshop (id, snapshot, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		string(doc), time.Now().UTC())
	return err
}

// LoadWorkshop implements Store. Returns nil when nothing is saved yet.
func (s *SQLiteStore) LoadWorkshop(ctx context.Context) (*domain.WorkshopState, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM workshop WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state domain.WorkshopState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return nil, fmt.Errorf("failed to decode workshop state: %w", err)
	}
	return &state, nil
}

// CreateSet implements Store.
func (s *SQLiteStore) CreateSet(ctx context.Context, name string, state *domain.WorkshopState) (*SavedSet, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode set snapshot: %w", err)
	}
	now := time.Now().UTC()
	set := &SavedSet{
		ID:        uuid.NewString(),
		Name:      name,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sets (id, name, snapshot, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		set.ID, set.Name, string(doc), set.CreatedAt, set.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return set, nil
}

// UpdateSet implements Store.
func (s *SQLiteStore) UpdateSet(ctx context.Context, id, name string, state *domain.WorkshopState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode set snapshot: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sets SET name = ?, snapshot = ?, updated_at = ? WHERE id = ?`,
		name, string(doc), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// GetSet implements Store.
func (s *SQLiteStore) GetSet(ctx context.Context, id string) (*SavedSet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, snapshot, created_at, updated_at FROM sets WHERE id = ?`, id)
	return scanSet(row)
}

// ListSets implements Store. Sets come back most recently updated first.
func (s *SQLiteStore) ListSets(ctx context.Context) ([]*SavedSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, snapshot, created_at, updated_at FROM sets ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*SavedSet
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// DeleteSet implements Store.
func (s *SQLiteStore) DeleteSet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// CreateProfile implements Store.
func (s *SQLiteStore) CreateProfile(ctx context.Context, profile *domain.PhaseProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO profiles (id, doc) VALUES (?, ?)`, profile.ID, string(doc))
	return err
}

// GetProfile implements Store.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*domain.PhaseProfile, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM profiles WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var profile domain.PhaseProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// ListProfiles implements Store.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]*domain.PhaseProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.PhaseProfile
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var profile domain.PhaseProfile
		if err := json.Unmarshal([]byte(doc), &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, &profile)
	}
	return profiles, rows.Err()
}

// UpdateProfile implements Store.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, profile *domain.PhaseProfile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET doc = ? WHERE id = ?`, string(doc), profile.ID)
	if err != nil {
		return err
	}
	return requireRow(res, profile.ID)
}

// DeleteProfile implements Store.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSet(row rowScanner) (*SavedSet, error) {
	var set SavedSet
	var doc string
	err := row.Scan(&set.ID, &set.Name, &doc, &set.CreatedAt, &set.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var state domain.WorkshopState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return nil, fmt.Errorf("failed to decode set snapshot: %w", err)
	}
	set.State = &state
	return &set, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
