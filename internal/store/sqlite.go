package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite analysis history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(path string) (*Store, error) {
	return OpenWithTimeout(path, 5*time.Second)
}

// OpenWithTimeout is like Open with an explicit SQLite busy timeout.
func OpenWithTimeout(path string, busy time.Duration) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", path, busy.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := MigrateDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert stores r and returns its ID. A zero CreatedNs is set to now.
func (s *Store) Insert(r *Record) (int64, error) {
	if r.CreatedNs == 0 {
		r.CreatedNs = time.Now().UnixNano()
	}

	result, err := s.db.Exec(`
		INSERT INTO analyses (fingerprint, source, created_ns, length, status, key_length, keyword, average_ioc, plaintext, error, duration_ns, model)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Fingerprint[:], r.Source, r.CreatedNs, r.Length, string(r.Status), r.KeyLength, r.Keyword,
		r.AverageIoC, r.Plaintext, r.Error, r.DurationNs, r.Model,
	)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	return id, nil
}

const selectRecord = `
	SELECT id, fingerprint, source, created_ns, length, status, key_length, keyword, average_ioc, plaintext, error, duration_ns, model
	FROM analyses`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var r Record
	var fp []byte
	var status string
	if err := row.Scan(&r.ID, &fp, &r.Source, &r.CreatedNs, &r.Length, &status, &r.KeyLength, &r.Keyword,
		&r.AverageIoC, &r.Plaintext, &r.Error, &r.DurationNs, &r.Model); err != nil {
		return nil, err
	}
	copy(r.Fingerprint[:], fp)
	r.Status = Status(status)
	return &r, nil
}

// Get retrieves a record by ID.
func (s *Store) Get(id int64) (*Record, error) {
	r, err := scanRecord(s.db.QueryRow(selectRecord+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return r, nil
}

// Lookup returns the most recent successful analysis of a ciphertext.
func (s *Store) Lookup(fp [32]byte) (*Record, error) {
	r, err := scanRecord(s.db.QueryRow(selectRecord+`
		WHERE fingerprint = ? AND status = ?
		ORDER BY created_ns DESC, id DESC LIMIT 1`, fp[:], string(StatusOK)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup analysis: %w", err)
	}
	return r, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]Record, error) {
	query := selectRecord + ` ORDER BY created_ns DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return records, nil
}

// Stats summarizes the stored analyses.
func (s *Store) Stats() (*Stats, error) {
	var st Stats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(length), 0)
		FROM analyses`, string(StatusOK),
	).Scan(&st.Total, &st.Succeeded, &st.Symbols)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	st.Failed = st.Total - st.Succeeded
	return &st, nil
}

// Prune deletes records created before cutoffNs and returns how many were removed.
func (s *Store) Prune(cutoffNs int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM analyses WHERE created_ns < ?`, cutoffNs)
	if err != nil {
		return 0, fmt.Errorf("prune analyses: %w", err)
	}
	return result.RowsAffected()
}
