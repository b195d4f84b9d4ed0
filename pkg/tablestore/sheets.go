package tablestore

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/smartextemp/extemp-backend/pkg/config"
	"github.com/smartextemp/extemp-backend/pkg/logger"
)

// SheetsStore is the Google Sheets implementation of Store. Each table is a
// worksheet tab; ReplaceAll clears the tab and rewrites header plus rows.
//
// The Sheets API has no compare-and-swap, so snapshot revisions are not
// enforced here: concurrent writers are last-writer-wins, exactly like the
// spreadsheet itself.
type SheetsStore struct {
	srv           *sheets.Service
	spreadsheetID string
	logger        *logger.Logger
}

// NewSheetsStore creates a Sheets-backed table store from service-account
// credentials (inline JSON takes precedence over a credentials file).
func NewSheetsStore(ctx context.Context, cfg *config.SheetsConfig, log *logger.Logger) (*SheetsStore, error) {
	credsJSON := []byte(cfg.CredentialsJSON)
	if len(credsJSON) == 0 {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheets credentials file: %w", err)
		}
		credsJSON = data
	}

	creds, err := google.CredentialsFromJSON(ctx, credsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	// Verify the spreadsheet is reachable before serving traffic
	if _, err := srv.Spreadsheets.Get(cfg.SpreadsheetID).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("unable to access spreadsheet: %w", err)
	}

	log.Warn().Msg("sheets backend has no revision tracking, concurrent writes are last-writer-wins")

	return &SheetsStore{
		srv:           srv,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        log,
	}, nil
}

// ReadAll implements Store
func (s *SheetsStore) ReadAll(ctx context.Context, table string) (*Snapshot, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, table).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", table, err)
	}

	if len(resp.Values) == 0 {
		return &Snapshot{}, nil
	}

	all := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = CleanCell(fmt.Sprint(v))
		}
		all[i] = cells
	}

	snap := &Snapshot{Header: all[0]}
	snap.Rows = CleanRows(all[1:], len(snap.Header))
	return snap, nil
}

// ReplaceAll implements Store
func (s *SheetsStore) ReplaceAll(ctx context.Context, table string, snap *Snapshot) error {
	if _, err := s.srv.Spreadsheets.Values.Clear(
		s.spreadsheetID, table, &sheets.ClearValuesRequest{},
	).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear worksheet %s: %w", table, err)
	}

	rows := CleanRows(snap.Rows, len(snap.Header))

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toInterfaceRow(snap.Header))
	for _, row := range rows {
		values = append(values, toInterfaceRow(row))
	}

	vr := &sheets.ValueRange{Values: values}
	if _, err := s.srv.Spreadsheets.Values.Update(
		s.spreadsheetID, fmt.Sprintf("%s!A1", table), vr,
	).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to write worksheet %s: %w", table, err)
	}

	return nil
}

func toInterfaceRow(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
