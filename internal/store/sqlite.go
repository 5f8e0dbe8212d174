package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/splitstat/splitstat/internal/dataset"
)

var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    id TEXT PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    n_total INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_datasets_name ON datasets(name);

CREATE TABLE IF NOT EXISTS records (
    dataset_id TEXT NOT NULL,
    user_id INTEGER NOT NULL,
    grp TEXT NOT NULL,
    converted INTEGER NOT NULL,
    time_spent REAL NOT NULL,
    clicks INTEGER NOT NULL,
    session_count INTEGER NOT NULL,
    ts INTEGER NOT NULL,
    PRIMARY KEY (dataset_id, user_id),
    FOREIGN KEY (dataset_id) REFERENCES datasets(id)
);

CREATE INDEX IF NOT EXISTS idx_records_dataset ON records(dataset_id);

CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,
    dataset_id TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    FOREIGN KEY (dataset_id) REFERENCES datasets(id)
);

CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateDataset persists the dataset row and all of its records in one
// transaction. An existing dataset with the same name is replaced.
func (s *SQLiteStore) CreateDataset(ctx context.Context, name string, seed uint64, records []dataset.Record) (*Dataset, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldID sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT id FROM datasets WHERE name = ?`, name).Scan(&oldID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing dataset: %w", err)
	}
	if oldID.Valid {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE dataset_id = ?`, oldID.String); err != nil {
			return nil, fmt.Errorf("failed to delete old records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE dataset_id = ?`, oldID.String); err != nil {
			return nil, fmt.Errorf("failed to delete old reports: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, oldID.String); err != nil {
			return nil, fmt.Errorf("failed to delete old dataset: %w", err)
		}
	}

	id := uuid.NewString()
	now := time.Now().Unix()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, name, n_total, seed, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, len(records), int64(seed), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (dataset_id, user_id, grp, converted, time_spent, clicks, session_count, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		converted := 0
		if r.Converted {
			converted = 1
		}
		if _, err := stmt.ExecContext(ctx, id, r.UserID, string(r.Group), converted, r.TimeSpent, r.Clicks, r.Sessions, r.Timestamp.Unix()); err != nil {
			return nil, fmt.Errorf("failed to insert record %d: %w", r.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit dataset: %w", err)
	}

	return &Dataset{
		ID:        id,
		Name:      name,
		NTotal:    len(records),
		Seed:      seed,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) GetDataset(ctx context.Context, name string) (*Dataset, error) {
	return s.scanDataset(s.db.QueryRowContext(ctx,
		`SELECT id, name, n_total, seed, created_at FROM datasets WHERE name = ?`, name))
}

func (s *SQLiteStore) LatestDataset(ctx context.Context) (*Dataset, error) {
	return s.scanDataset(s.db.QueryRowContext(ctx,
		`SELECT id, name, n_total, seed, created_at FROM datasets ORDER BY created_at DESC, rowid DESC LIMIT 1`))
}

func (s *SQLiteStore) scanDataset(row *sql.Row) (*Dataset, error) {
	var d Dataset
	var seed int64
	var createdAt int64

	err := row.Scan(&d.ID, &d.Name, &d.NTotal, &seed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	d.Seed = uint64(seed)
	d.CreatedAt = time.Unix(createdAt, 0)
	return &d, nil
}

func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]*Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, n_total, seed, created_at FROM datasets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*Dataset
	for rows.Next() {
		var d Dataset
		var seed, createdAt int64
		if err := rows.Scan(&d.ID, &d.Name, &d.NTotal, &seed, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		d.Seed = uint64(seed)
		d.CreatedAt = time.Unix(createdAt, 0)
		datasets = append(datasets, &d)
	}

	return datasets, rows.Err()
}

func (s *SQLiteStore) DeleteDataset(ctx context.Context, name string) error {
	d, err := s.GetDataset(ctx, name)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE dataset_id = ?`, d.ID); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE dataset_id = ?`, d.ID); err != nil {
		return fmt.Errorf("failed to delete reports: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, d.ID); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetRecords(ctx context.Context, datasetID string) ([]dataset.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, grp, converted, time_spent, clicks, session_count, ts
		 FROM records WHERE dataset_id = ? ORDER BY user_id`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	defer rows.Close()

	var records []dataset.Record
	for rows.Next() {
		var r dataset.Record
		var grp string
		var converted int
		var ts int64
		if err := rows.Scan(&r.UserID, &grp, &converted, &r.TimeSpent, &r.Clicks, &r.Sessions, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Group = dataset.Group(grp)
		r.Converted = converted == 1
		r.Timestamp = time.Unix(ts, 0).UTC()
		records = append(records, r)
	}

	return records, rows.Err()
}

func (s *SQLiteStore) SaveReport(ctx context.Context, datasetID string, body []byte) (*SavedReport, error) {
	id := uuid.NewString()
	now := time.Now().Unix()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, dataset_id, body, created_at) VALUES (?, ?, ?, ?)`,
		id, datasetID, string(body), now)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	return &SavedReport{
		ID:        id,
		DatasetID: datasetID,
		Body:      body,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

func (s *SQLiteStore) LatestReport(ctx context.Context) (*SavedReport, error) {
	var r SavedReport
	var body string
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, dataset_id, body, created_at FROM reports ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&r.ID, &r.DatasetID, &body, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	r.Body = []byte(body)
	r.CreatedAt = time.Unix(createdAt, 0)
	return &r, nil
}

// DB returns the underlying database connection for health checks
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}
