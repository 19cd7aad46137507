package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const exportedWorkbookName = "data.xlsx"

// SheetsStore keeps the same two tables in a Google spreadsheet, one sheet
// per table with the same header rows as the xlsx backend.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	mu            sync.Mutex
}

// NewSheetsStore builds a Sheets client from OAuth2 credentials and token
// JSON (both passed by value so they can live in env, not on disk).
func NewSheetsStore(ctx context.Context, spreadsheetID, credentialsJSON, tokenJSON string) (*SheetsStore, error) {
	cfg, err := google.ConfigFromJSON([]byte(credentialsJSON), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(tokenJSON), &tok); err != nil {
		return nil, fmt.Errorf("parse sheets token: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetsStore) Load() (Tables, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked()
}

func (s *SheetsStore) Save(t Tables) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveUnlocked(t)
}

func (s *SheetsStore) Update(fn func(*Tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	if err := fn(&t); err != nil {
		return err
	}
	return s.saveUnlocked(t)
}

// Export renders an xlsx workbook from the current tables so the admin
// receives the same file format as with the file backend.
func (s *SheetsStore) Export() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.loadUnlocked()
	if err != nil {
		return "", nil, err
	}
	f, err := renderWorkbook(t)
	if err != nil {
		return "", nil, markUnavailable(err)
	}
	defer func() {
		_ = f.Close()
	}()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, markUnavailable(fmt.Errorf("render workbook: %w", err))
	}
	return exportedWorkbookName, buf.Bytes(), nil
}

func (s *SheetsStore) loadUnlocked() (Tables, error) {
	var t Tables

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, usersSheet+"!A1:B").Do()
	if err != nil {
		return Tables{}, markUnavailable(fmt.Errorf("read %s range: %w", usersSheet, err))
	}
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		row = padAny(row, 2)
		id, err := strconv.ParseInt(fmt.Sprint(row[0]), 10, 64)
		if err != nil {
			return Tables{}, markUnavailable(fmt.Errorf("%s row %d: bad id %v", usersSheet, i+1, row[0]))
		}
		t.Users = append(t.Users, User{ID: id, FullName: fmt.Sprint(row[1])})
	}

	resp, err = s.svc.Spreadsheets.Values.Get(s.spreadsheetID, submissionsSheet+"!A1:D").Do()
	if err != nil {
		return Tables{}, markUnavailable(fmt.Errorf("read %s range: %w", submissionsSheet, err))
	}
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue
		}
		row = padAny(row, 4)
		id, err := strconv.ParseInt(fmt.Sprint(row[0]), 10, 64)
		if err != nil {
			return Tables{}, markUnavailable(fmt.Errorf("%s row %d: bad id %v", submissionsSheet, i+1, row[0]))
		}
		t.Submissions = append(t.Submissions, Submission{
			UserID:     id,
			FullName:   fmt.Sprint(row[1]),
			Period:     fmt.Sprint(row[2]),
			Importance: fmt.Sprint(row[3]),
		})
	}
	return t, nil
}

func (s *SheetsStore) saveUnlocked(t Tables) error {
	users := [][]interface{}{{"id", "full_name"}}
	for _, u := range t.Users {
		users = append(users, []interface{}{u.ID, u.FullName})
	}
	subs := [][]interface{}{{"id", "full_name", "period", "importance"}}
	for _, sub := range t.Submissions {
		subs = append(subs, []interface{}{sub.UserID, sub.FullName, sub.Period, sub.Importance})
	}

	if err := s.overwriteRange(usersSheet, "A:B", users); err != nil {
		return err
	}
	return s.overwriteRange(submissionsSheet, "A:D", subs)
}

func (s *SheetsStore) overwriteRange(sheet, cols string, values [][]interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, sheet+"!"+cols, &sheets.ClearValuesRequest{}).Do()
	if err != nil {
		return markUnavailable(fmt.Errorf("clear %s range: %w", sheet, err))
	}
	vr := &sheets.ValueRange{Values: values}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, sheet+"!A1", vr).ValueInputOption("RAW").Do()
	if err != nil {
		return markUnavailable(fmt.Errorf("update %s range: %w", sheet, err))
	}
	return nil
}

func padAny(row []interface{}, n int) []interface{} {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}
