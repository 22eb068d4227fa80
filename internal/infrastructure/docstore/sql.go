package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
)

// SQLStore is a Store backed by a MySQL-compatible database. Every document
// lives as one JSON row in a single documents table; equality filters and
// ordering go through JSON_EXTRACT. Batches map onto SQL transactions.
type SQLStore struct {
	db *sql.DB
}

// fieldNamePattern guards identifiers interpolated into JSON paths. Field
// names reaching the store have already passed schema validation, but the
// store does not rely on that.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// NewSQLStore creates a SQLStore and ensures the documents table exists.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.ensureTable(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) ensureTable() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		collection VARCHAR(191) NOT NULL,
		id VARCHAR(64) NOT NULL,
		doc JSON NOT NULL,
		PRIMARY KEY (collection, id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDoc(raw)
}

func (s *SQLStore) Set(ctx context.Context, collection, id string, doc Document) error {
	return s.setTx(ctx, s.db, collection, id, doc)
}

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLStore) setTx(ctx context.Context, ex execer, collection, id string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = ex.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE doc = VALUES(doc)`,
		collection, id, raw,
	)
	return err
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, fields Document) error {
	return s.updateTx(ctx, s.db, collection, id, fields)
}

func (s *SQLStore) updateTx(ctx context.Context, ex execer, collection, id string, fields Document) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	res, err := ex.ExecContext(ctx,
		`UPDATE documents SET doc = JSON_MERGE_PATCH(doc, ?)
		 WHERE collection = ? AND id = ?`,
		raw, collection, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// MySQL reports 0 affected rows both for a missing row and for a
		// no-op merge; distinguish with an existence probe.
		var exists int
		probeErr := ex.QueryRowContext(ctx,
			"SELECT 1 FROM documents WHERE collection = ? AND id = ?",
			collection, id,
		).Scan(&exists)
		if probeErr == sql.ErrNoRows {
			return ErrNotFound
		}
		return probeErr
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	)
	return err
}

func (s *SQLStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := "SELECT doc FROM documents WHERE collection = ?"
	args := []interface{}{collection}

	for _, f := range q.Filters {
		path, err := jsonPath(f.Field)
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(" AND JSON_UNQUOTE(JSON_EXTRACT(doc, %s)) = ?", path)
		args = append(args, fmt.Sprintf("%v", f.Value))
	}

	if q.OrderBy != "" {
		path, err := jsonPath(q.OrderBy)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY JSON_EXTRACT(doc, %s) %s", path, dir)
	}

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
		if q.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", q.Offset)
		}
	} else if q.Offset > 0 {
		// MySQL requires a LIMIT before OFFSET.
		query += fmt.Sprintf(" LIMIT 18446744073709551615 OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context, collection string, filters []Filter) (int, error) {
	query := "SELECT COUNT(*) FROM documents WHERE collection = ?"
	args := []interface{}{collection}
	for _, f := range filters {
		path, err := jsonPath(f.Field)
		if err != nil {
			return 0, err
		}
		query += fmt.Sprintf(" AND JSON_UNQUOTE(JSON_EXTRACT(doc, %s)) = ?", path)
		args = append(args, fmt.Sprintf("%v", f.Value))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *SQLStore) RunBatch(ctx context.Context, writes []Write) error {
	if len(writes) > MaxBatchWrites {
		return fmt.Errorf("batch of %d writes exceeds transaction limit of %d", len(writes), MaxBatchWrites)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	for _, w := range writes {
		var werr error
		switch w.Op {
		case OpSet:
			werr = s.setTx(ctx, tx, w.Collection, w.ID, w.Doc)
		case OpUpdate:
			werr = s.updateTx(ctx, tx, w.Collection, w.ID, w.Doc)
		case OpDelete:
			_, werr = tx.ExecContext(ctx,
				"DELETE FROM documents WHERE collection = ? AND id = ?",
				w.Collection, w.ID,
			)
		}
		if werr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("batch write failed: %w (rollback error: %v)", werr, rbErr)
			}
			return werr
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteCollection(ctx context.Context, collection string) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", collection)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func decodeDoc(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func jsonPath(field string) (string, error) {
	if !fieldNamePattern.MatchString(field) {
		return "", fmt.Errorf("invalid field name %q", field)
	}
	return "'$." + field + "'", nil
}
