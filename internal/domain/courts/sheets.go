package courts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/sheets/v4"
)

// SheetsSource reads and writes the court list in a Google spreadsheet.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
	rng           string
}

func NewSheetsSource(svc *sheets.Service, spreadsheetID, rng string) *SheetsSource {
	return &SheetsSource{svc: svc, spreadsheetID: spreadsheetID, rng: rng}
}

// Read returns every data row below the header.
func (s *SheetsSource) Read(ctx context.Context) ([]TennisCourt, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read court sheet: %w", err)
	}
	if len(resp.Values) == 0 {
		return []TennisCourt{}, nil
	}

	out := make([]TennisCourt, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		if c, ok := courtFromRow(row); ok {
			out = append(out, c)
		}
	}
	log.Debug().Int("courts", len(out)).Msg("read court sheet")
	return out, nil
}

// Write replaces the sheet contents with the header and the given courts.
func (s *SheetsSource) Write(ctx context.Context, courts []TennisCourt) error {
	values := make([][]interface{}, 0, len(courts)+1)
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	values = append(values, header)
	for _, c := range courts {
		values = append(values, c.toRow())
	}

	// Update only overwrites the cells it covers, so a shorter list would
	// leave old rows behind.
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, s.rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear court sheet: %w", err)
	}

	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write court sheet: %w", err)
	}
	return nil
}

// Append adds a single row after the last data row.
func (s *SheetsSource) Append(ctx context.Context, c TennisCourt) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.rng, &sheets.ValueRange{
		Values: [][]interface{}{c.toRow()},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append court: %w", err)
	}
	return nil
}

func (s *SheetsSource) Info(ctx context.Context) (*SheetInfo, error) {
	resp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet info: %w", err)
	}

	info := &SheetInfo{URL: s.URL(), Sheets: []SheetStats{}}
	if resp.Properties != nil {
		info.Title = resp.Properties.Title
	}
	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		st := SheetStats{Title: sh.Properties.Title}
		if gp := sh.Properties.GridProperties; gp != nil {
			st.RowCount = gp.RowCount
			st.ColumnCount = gp.ColumnCount
		}
		info.Sheets = append(info.Sheets, st)
	}
	return info, nil
}

func (s *SheetsSource) URL() string {
	return "https://docs.google.com/spreadsheets/d/" + s.spreadsheetID + "/edit"
}
