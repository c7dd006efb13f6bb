package store

import (
	"database/sql"
	"errors"
	"time"
)

// Export records one image written by the export action.
type Export struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Solids    int       `json:"solids"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportRepository provides access to the export log.
type ExportRepository struct {
	db *sql.DB
}

// Exports returns the export repository for this store.
func (s *Store) Exports() *ExportRepository {
	return &ExportRepository{db: s.db}
}

// Create inserts a new export record. A zero CreatedAt is set to now.
func (r *ExportRepository) Create(e *Export) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO exports (id, kind, format, path, width, height, solids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Format, e.Path, e.Width, e.Height, e.Solids, e.CreatedAt,
	)
	return err
}

// GetByID retrieves an export record by its ID.
func (r *ExportRepository) GetByID(id string) (*Export, error) {
	e := &Export{}
	err := r.db.QueryRow(
		`SELECT id, kind, format, path, width, height, solids, created_at
		 FROM exports WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Kind, &e.Format, &e.Path, &e.Width, &e.Height, &e.Solids, &e.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return e, nil
}

// List retrieves export records, newest first. A positive limit caps the
// number returned.
func (r *ExportRepository) List(limit int) ([]*Export, error) {
	query := `SELECT id, kind, format, path, width, height, solids, created_at
		 FROM exports ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []*Export
	for rows.Next() {
		e := &Export{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Format, &e.Path, &e.Width, &e.Height, &e.Solids, &e.CreatedAt); err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exports, nil
}

// Delete removes an export record by its ID. The image file is left alone.
func (r *ExportRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM exports WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
