package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// RecordRepository persists generic content records. Each record is a
// JSONB document keyed by resource name, which keeps the dev server's
// schema flat while the collections stay heterogeneous.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository constructs a RecordRepository on an open
// connection.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// List returns a resource's records, newest first.
func (r *RecordRepository) List(ctx context.Context, resource string) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data, created_at FROM records
		 WHERE resource = $1 ORDER BY id DESC`, resource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Insert stores a new record and returns it with its assigned id.
func (r *RecordRepository) Insert(ctx context.Context, resource string, data models.Record) (models.Record, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO records (resource, data) VALUES ($1, $2::jsonb)
		 RETURNING id, created_at`, resource, raw)

	var id int64
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		return nil, err
	}
	return withMeta(data, id, createdAt), nil
}

// Update merges the given fields into an existing record and returns
// the merged document.
func (r *RecordRepository) Update(ctx context.Context, resource string, id int64, data models.Record) (models.Record, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`UPDATE records SET data = data || $3::jsonb
		 WHERE resource = $1 AND id = $2
		 RETURNING id, data, created_at`, resource, id, raw)
	return scanRecord(row)
}

// Delete removes a record.
func (r *RecordRepository) Delete(ctx context.Context, resource string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE resource = $1 AND id = $2`, resource, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Flag reads a record's boolean field; absent fields read as false.
func (r *RecordRepository) Flag(ctx context.Context, resource string, id int64, field string) (bool, error) {
	var value bool
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE((data->>$3)::boolean, false) FROM records
		 WHERE resource = $1 AND id = $2`, resource, id, field).Scan(&value)
	return value, err
}

// SetFlag writes a record's boolean field.
func (r *RecordRepository) SetFlag(ctx context.Context, resource string, id int64, field string, value bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET data = data || jsonb_build_object($3::text, $4::boolean)
		 WHERE resource = $1 AND id = $2`, resource, id, field, value)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountFlagged counts the resource's records with the field set.
func (r *RecordRepository) CountFlagged(ctx context.Context, resource, field string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records
		 WHERE resource = $1 AND COALESCE((data->>$2)::boolean, false)`, resource, field).Scan(&n)
	return n, err
}

// Count returns the number of records in a resource.
func (r *RecordRepository) Count(ctx context.Context, resource string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE resource = $1`, resource).Scan(&n)
	return n, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (models.Record, error) {
	var id int64
	var raw []byte
	var createdAt time.Time
	if err := s.Scan(&id, &raw, &createdAt); err != nil {
		return nil, err
	}
	var data models.Record
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return withMeta(data, id, createdAt), nil
}

func withMeta(data models.Record, id int64, createdAt time.Time) models.Record {
	data["id"] = id
	data["created_at"] = createdAt.Format(time.RFC3339)
	return data
}
