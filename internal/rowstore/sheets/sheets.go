// Package sheets provides a Google Sheets implementation of the
// rowstore.Store interface. One spreadsheet holds every sheet; cells are
// read and written through the Sheets values API in RAW mode so stored
// strings round-trip unchanged.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/kanitw/stockroom/internal/rowstore"
)

// Ensure SheetsStore implements rowstore.Store
var _ rowstore.Store = (*SheetsStore)(nil)

// SheetsStore implements rowstore.Store against one Google spreadsheet.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
}

// New creates a SheetsStore for the given spreadsheet, authenticating
// with a service-account credentials file.
func New(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Close is a no-op; the underlying HTTP client holds no resources that
// need explicit release.
func (s *SheetsStore) Close() error {
	return nil
}

// EnsureSheet creates the sheet tab if absent and repairs the header row
// if it is missing, too short, or starts with the wrong column name.
func (s *SheetsStore) EnsureSheet(ctx context.Context, sheet string, header []string) error {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	exists := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			exists = true
			break
		}
	}
	if !exists {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheet},
				},
			}},
		}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	first, err := s.GetRow(ctx, sheet, 1)
	if err != nil {
		return err
	}
	if headerMatches(first, header) {
		return nil
	}

	return s.UpdateRange(ctx, sheet, rowstore.RowRange(len(header), 1), [][]string{header})
}

func headerMatches(row, header []string) bool {
	if len(row) < len(header) {
		return false
	}
	for i, h := range header {
		if row[i] != h {
			return false
		}
	}
	return true
}

// GetAllRows returns all data rows keyed by the header columns.
func (s *SheetsStore) GetAllRows(ctx context.Context, sheet string) ([]rowstore.Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}

	header := toStrings(resp.Values[0])
	var out []rowstore.Row
	for _, raw := range resp.Values[1:] {
		cells := toStrings(raw)
		record := make(rowstore.Row, len(header))
		empty := true
		for i, name := range header {
			var v string
			if i < len(cells) {
				v = cells[i]
			}
			if v != "" {
				empty = false
			}
			record[name] = v
		}
		if !empty {
			out = append(out, record)
		}
	}
	return out, nil
}

// GetRow returns the raw cell values of one row. A missing row yields an
// empty slice, not an error.
func (s *SheetsStore) GetRow(ctx context.Context, sheet string, rowIndex int) ([]string, error) {
	rangeAddr := fmt.Sprintf("%s!%d:%d", sheet, rowIndex, rowIndex)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeAddr).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d of %s: %w", rowIndex, sheet, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

// UpdateCell writes a single cell addressed in A1 notation.
func (s *SheetsStore) UpdateCell(ctx context.Context, sheet, cell, value string) error {
	return s.UpdateRange(ctx, sheet, cell, [][]string{{value}})
}

// UpdateRange writes a rectangular block of cells addressed in A1 notation.
func (s *SheetsStore) UpdateRange(ctx context.Context, sheet, rangeAddr string, values [][]string) error {
	vr := &sheets.ValueRange{Values: make([][]any, len(values))}
	for i, rowValues := range values {
		cells := make([]any, len(rowValues))
		for j, v := range rowValues {
			cells[j] = v
		}
		vr.Values[i] = cells
	}

	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, fmt.Sprintf("%s!%s", sheet, rangeAddr), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s!%s: %w", sheet, rangeAddr, err)
	}
	return nil
}

// AppendRow writes values into the first unused row: the count of existing
// data rows plus two.
func (s *SheetsStore) AppendRow(ctx context.Context, sheet string, values []string) error {
	rows, err := s.GetAllRows(ctx, sheet)
	if err != nil {
		return err
	}
	return s.UpdateRange(ctx, sheet, rowstore.RowRange(len(values), len(rows)+2), [][]string{values})
}

func toStrings(raw []any) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}
