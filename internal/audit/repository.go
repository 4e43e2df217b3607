package audit

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lib/pq"
)

type Repository struct {
	Db *sql.DB
}

func Connect(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgresql: %w", err)
	}

	_, err = db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS portal_events(
		id UUID PRIMARY KEY,
		type TEXT NOT NULL,
		actor TEXT NOT NULL,
		subject TEXT NOT NULL,
		patient_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		at TIMESTAMPTZ NOT NULL);
		`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	return &Repository{Db: db}, nil
}

func (r *Repository) Close() error {
	return r.Db.Close()
}

// ImportFromCsv streams a spool file into portal_events with COPY in a
// single transaction.
func (r *Repository) ImportFromCsv(ctx context.Context, path string) error {
	op := "Repository.ImportFromCsv"

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(Columns)
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("%s: failed to read header: %w", op, err)
	}

	txn, err := r.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer txn.Rollback()

	stmt, err := txn.PrepareContext(ctx, pq.CopyIn("portal_events", Columns...))
	if err != nil {
		return fmt.Errorf("%s: failed to prepare copy: %w", op, err)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stmt.Close()
			return fmt.Errorf("%s: failed to read row: %w", op, err)
		}
		args := make([]any, len(record))
		for i, v := range record {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			return fmt.Errorf("%s: failed to copy row: %w", op, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("%s: failed to flush copy: %w", op, err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}
	return nil
}
