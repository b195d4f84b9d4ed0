package tablestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smartextemp/extemp-backend/pkg/database"
)

// PostgresStore keeps whole tables in a generic sheet_rows table, one JSON
// array of cells per row, with the header at index 0. A companion
// sheet_revisions table gives each tab a revision counter so ReplaceAll can
// reject writes based on a stale read.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a Postgres-backed table store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the backing tables if they do not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sheet_rows (
			tab   TEXT  NOT NULL,
			idx   INT   NOT NULL,
			cells JSONB NOT NULL,
			PRIMARY KEY (tab, idx)
		)`,
		`CREATE TABLE IF NOT EXISTS sheet_revisions (
			tab      TEXT   PRIMARY KEY,
			revision BIGINT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure table store schema: %w", err)
		}
	}
	return nil
}

// ReadAll implements Store
func (s *PostgresStore) ReadAll(ctx context.Context, table string) (*Snapshot, error) {
	snap := &Snapshot{}

	var revision sql.NullInt64
	err := s.db.GetContext(ctx, &revision,
		`SELECT revision FROM sheet_revisions WHERE tab = $1`, table)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read revision for %s: %w", table, err)
	}
	if revision.Valid {
		snap.Revision = revision.Int64
	}

	var raws [][]byte
	if err := s.db.SelectContext(ctx, &raws,
		`SELECT cells FROM sheet_rows WHERE tab = $1 ORDER BY idx`, table); err != nil {
		return nil, fmt.Errorf("failed to read rows for %s: %w", table, err)
	}
	if len(raws) == 0 {
		return snap, nil
	}

	all := make([][]string, 0, len(raws))
	for _, raw := range raws {
		var cells []string
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, fmt.Errorf("failed to decode row for %s: %w", table, err)
		}
		all = append(all, cells)
	}

	snap.Header = all[0]
	snap.Rows = CleanRows(all[1:], len(snap.Header))
	return snap, nil
}

// ReplaceAll implements Store
func (s *PostgresStore) ReplaceAll(ctx context.Context, table string, snap *Snapshot) error {
	rows := CleanRows(snap.Rows, len(snap.Header))

	return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var current sql.NullInt64
		err := tx.GetContext(ctx, &current,
			`SELECT revision FROM sheet_revisions WHERE tab = $1 FOR UPDATE`, table)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to lock revision for %s: %w", table, err)
		}

		have := int64(0)
		if current.Valid {
			have = current.Int64
		}
		if snap.Revision != have {
			return ErrConflict
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sheet_rows WHERE tab = $1`, table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}

		insert := func(idx int, cells []string) error {
			raw, err := json.Marshal(cells)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO sheet_rows (tab, idx, cells) VALUES ($1, $2, $3)`,
				table, idx, raw)
			return err
		}

		if err := insert(0, snap.Header); err != nil {
			return fmt.Errorf("failed to write header for %s: %w", table, err)
		}
		for i, row := range rows {
			if err := insert(i+1, row); err != nil {
				return fmt.Errorf("failed to write row %d for %s: %w", i, table, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_revisions (tab, revision) VALUES ($1, $2)
			 ON CONFLICT (tab) DO UPDATE SET revision = $2`,
			table, have+1); err != nil {
			return fmt.Errorf("failed to bump revision for %s: %w", table, err)
		}

		return nil
	})
}
