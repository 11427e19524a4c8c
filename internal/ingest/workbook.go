package ingest

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// monthSheets are the sheet names recognized as monthly report sheets.
var monthSheets = map[string]bool{
	"Jan": true, "Feb": true, "Mar": true, "Apr": true,
	"May": true, "Jun": true, "Jul": true, "Aug": true,
	"Sep": true, "Oct": true, "Nov": true, "Dec": true,
}

var yearPattern = regexp.MustCompile(`20[2-3][0-9]`)

// SheetTable is the raw tabular content of one monthly report sheet,
// exactly as read: a header row and string-valued cell rows.
type SheetTable struct {
	File   string
	Sheet  string
	Year   int
	Header []string
	Rows   [][]string
}

// Stats counts what the scan touched and skipped.
type Stats struct {
	WorkbooksRead    int
	WorkbooksSkipped int
	SheetsRead       int
	SheetsSkipped    int
}

// Loader scans a directory for fuel-mix report workbooks.
type Loader struct {
	reportName string
	startYear  int
	endYear    int
	logger     *log.Logger
}

// NewLoader creates a workbook loader. reportName is the case-insensitive
// filename substring identifying a fuel-mix report.
func NewLoader(reportName string, startYear, endYear int, logger *log.Logger) *Loader {
	return &Loader{
		reportName: strings.ToLower(reportName),
		startYear:  startYear,
		endYear:    endYear,
		logger:     logger,
	}
}

// Scan reads every matching workbook under dir and appends one SheetTable
// per recognized month sheet to acc, returning the grown accumulator.
// A workbook that cannot be opened is logged and skipped; its data is
// absent from the result. Returns an error only if no workbook in the
// supported year range exists at all.
func (l *Loader) Scan(dir string, acc []SheetTable) ([]SheetTable, Stats, error) {
	var stats Stats

	entries, err := os.ReadDir(dir)
	if err != nil {
		return acc, stats, fmt.Errorf("scan %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)
		if !strings.Contains(lower, l.reportName) || !strings.HasSuffix(lower, ".xlsx") {
			continue
		}
		if _, ok := l.fileYear(name); !ok {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	if len(files) == 0 {
		return acc, stats, fmt.Errorf("no matching years found in %s", dir)
	}

	for _, name := range files {
		year, _ := l.fileYear(name)
		l.logger.Printf("processing %s", name)

		tables, read, skipped, err := l.readWorkbook(filepath.Join(dir, name), year)
		if err != nil {
			l.logger.Printf("warning: skipping %s: %v", name, err)
			stats.WorkbooksSkipped++
			continue
		}
		stats.WorkbooksRead++
		stats.SheetsRead += read
		stats.SheetsSkipped += skipped
		acc = append(acc, tables...)
	}

	return acc, stats, nil
}

func (l *Loader) fileYear(name string) (int, bool) {
	match := yearPattern.FindString(name)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil || year < l.startYear || year > l.endYear {
		return 0, false
	}
	return year, true
}

func (l *Loader) readWorkbook(path string, year int) ([]SheetTable, int, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	var tables []SheetTable
	read, skipped := 0, 0
	for _, sheet := range f.GetSheetList() {
		if !monthSheets[sheet] {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			l.logger.Printf("warning: sheet %s of %s unreadable: %v", sheet, filepath.Base(path), err)
			skipped++
			continue
		}
		if len(rows) == 0 || !hasColumn(rows[0], "Fuel") {
			l.logger.Printf("skipping sheet %s (no Fuel col)", sheet)
			skipped++
			continue
		}
		tables = append(tables, SheetTable{
			File:   filepath.Base(path),
			Sheet:  sheet,
			Year:   year,
			Header: rows[0],
			Rows:   rows[1:],
		})
		read++
	}
	return tables, read, skipped, nil
}

func hasColumn(header []string, name string) bool {
	for _, col := range header {
		if col == name {
			return true
		}
	}
	return false
}
