// Package tablestore abstracts the spreadsheet-style backing store: whole
// tables of string cells, read in full and replaced in full. The production
// backend is a Google Sheets workbook; a Postgres implementation and an
// in-memory implementation share the same contract.
package tablestore

import (
	"context"
	"errors"
)

// Snapshot is the full contents of one table. The first row of the backing
// table is the header; Rows holds only data rows, padded to the header
// width. Revision is the store revision the snapshot was read at, used for
// optimistic write-back where the backend supports it.
type Snapshot struct {
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
	Revision int64      `json:"revision"`
}

var (
	// ErrConflict is returned by ReplaceAll when the table was replaced by
	// another writer since the snapshot was read.
	ErrConflict = errors.New("tablestore: revision conflict")
)

// Store is the read-all/replace-all table contract.
type Store interface {
	// ReadAll fetches the entire table. A table that does not exist or is
	// empty yields a snapshot with a nil header and no rows.
	ReadAll(ctx context.Context, table string) (*Snapshot, error)

	// ReplaceAll clears the table and writes header plus rows. snap.Revision
	// must be the revision previously read; backends that track revisions
	// return ErrConflict on mismatch, others apply last-writer-wins.
	ReplaceAll(ctx context.Context, table string, snap *Snapshot) error
}
