package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"
)

const (
	usersSheet       = "Users"
	submissionsSheet = "Submissions"
)

var (
	usersHeader       = []interface{}{"id", "full_name"}
	submissionsHeader = []interface{}{"id", "full_name", "period", "importance"}
)

// ExcelStore keeps both tables in one xlsx workbook on disk: sheet Users
// with columns [id, full_name] and sheet Submissions with columns
// [id, full_name, period, importance], first row = headers.
type ExcelStore struct {
	path string
	mu   sync.Mutex
}

// NewExcelStore ensures the workbook exists, creating an empty well-formed
// one when missing, as the engine assumes load never sees an absent file.
func NewExcelStore(path string) (*ExcelStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeWorkbookFile(path, Tables{}); err != nil {
			return nil, fmt.Errorf("init workbook: %w", err)
		}
	}
	return &ExcelStore{path: path}, nil
}

func (s *ExcelStore) Load() (Tables, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked()
}

func (s *ExcelStore) Save(t Tables) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveUnlocked(t)
}

// Update holds the writer lock across the whole load+mutate+save cycle.
func (s *ExcelStore) Update(fn func(*Tables) error) error {
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

// Export returns the raw workbook bytes for file delivery.
func (s *ExcelStore) Export() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", nil, markUnavailable(fmt.Errorf("read workbook: %w", err))
	}
	return filepath.Base(s.path), data, nil
}

func (s *ExcelStore) loadUnlocked() (Tables, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return Tables{}, markUnavailable(fmt.Errorf("open workbook: %w", err))
	}
	defer func() {
		_ = f.Close()
	}()

	var t Tables

	rows, err := f.GetRows(usersSheet)
	if err != nil {
		return Tables{}, markUnavailable(fmt.Errorf("read %s sheet: %w", usersSheet, err))
	}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		row = pad(row, 2)
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return Tables{}, markUnavailable(fmt.Errorf("%s row %d: bad id %q", usersSheet, i+1, row[0]))
		}
		t.Users = append(t.Users, User{ID: id, FullName: row[1]})
	}

	rows, err = f.GetRows(submissionsSheet)
	if err != nil {
		return Tables{}, markUnavailable(fmt.Errorf("read %s sheet: %w", submissionsSheet, err))
	}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		row = pad(row, 4)
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return Tables{}, markUnavailable(fmt.Errorf("%s row %d: bad id %q", submissionsSheet, i+1, row[0]))
		}
		t.Submissions = append(t.Submissions, Submission{
			UserID:     id,
			FullName:   row[1],
			Period:     row[2],
			Importance: row[3],
		})
	}
	return t, nil
}

func (s *ExcelStore) saveUnlocked(t Tables) error {
	if err := writeWorkbookFile(s.path, t); err != nil {
		return markUnavailable(err)
	}
	return nil
}

func pad(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

func writeWorkbookFile(path string, t Tables) error {
	f, err := renderWorkbook(t)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// renderWorkbook builds a workbook from the tables. Shared with the Sheets
// backend so the exported file format does not depend on the backend.
func renderWorkbook(t Tables) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(usersSheet); err != nil {
		return nil, fmt.Errorf("create %s sheet: %w", usersSheet, err)
	}
	if _, err := f.NewSheet(submissionsSheet); err != nil {
		return nil, fmt.Errorf("create %s sheet: %w", submissionsSheet, err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(usersSheet, "A1", &usersHeader); err != nil {
		return nil, fmt.Errorf("write %s header: %w", usersSheet, err)
	}
	for i, u := range t.Users {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{u.ID, u.FullName}
		if err := f.SetSheetRow(usersSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write %s row: %w", usersSheet, err)
		}
	}

	if err := f.SetSheetRow(submissionsSheet, "A1", &submissionsHeader); err != nil {
		return nil, fmt.Errorf("write %s header: %w", submissionsSheet, err)
	}
	for i, sub := range t.Submissions {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{sub.UserID, sub.FullName, sub.Period, sub.Importance}
		if err := f.SetSheetRow(submissionsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write %s row: %w", submissionsSheet, err)
		}
	}
	return f, nil
}
