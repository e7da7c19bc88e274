// Package spreadsheet reads and writes draw history workbooks.
//
// A row is either the full layout
//
//	issue | date | red 1..6 (sorted) | red 1..6 (draw order) | blue
//
// or the short layout
//
//	issue | date | red 1..6 (draw order) | blue
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/xuri/excelize/v2"
)

const (
	shortLayoutCols = 9
	fullLayoutCols  = 15
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")
	ErrEmptyWorkbook     = errors.New("workbook has no sheets")
)

// Row is one sheet row with its 1-based line number
type Row struct {
	Line  int
	Cells []string
}

// ReadRows reads every row of the first sheet (xlsx) or of a csv file.
// Cell values are raw, so dates come back as serial numbers.
func ReadRows(r io.Reader, filename string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return toRows(raw), nil
}

func readCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return toRows(raw), nil
}

func toRows(raw [][]string) []Row {
	rows := make([]Row, 0, len(raw))
	for i, cells := range raw {
		if isBlank(cells) {
			continue
		}
		rows = append(rows, Row{Line: i + 1, Cells: cells})
	}
	return rows
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// IsHeader reports whether the row looks like a title row rather than data
func IsHeader(row Row) bool {
	if len(row.Cells) == 0 {
		return true
	}
	_, err := lottery.NormalizeIssue(row.Cells[0])
	return err != nil && row.Line == 1
}

// ParseRow turns a row into a validated draw result
func ParseRow(row Row) (lottery.Result, error) {
	cells := row.Cells
	if len(cells) < shortLayoutCols {
		return lottery.Result{}, fmt.Errorf("line %d: expected at least %d columns, got %d", row.Line, shortLayoutCols, len(cells))
	}

	var res lottery.Result
	issue, err := lottery.NormalizeIssue(cells[0])
	if err != nil {
		return res, fmt.Errorf("line %d: %w", row.Line, err)
	}
	res.Issue = issue

	res.DrawDate, err = ParseDate(cells[1])
	if err != nil {
		return res, fmt.Errorf("line %d: %w", row.Line, err)
	}

	var sortedCells, orderCells []string
	var blueCell string
	if len(cells) >= fullLayoutCols {
		sortedCells, orderCells, blueCell = cells[2:8], cells[8:14], cells[14]
		if isBlank(orderCells) {
			orderCells = sortedCells
		}
	} else {
		orderCells, blueCell = cells[2:8], cells[8]
	}

	for i, c := range orderCells {
		n, err := lottery.ParseBall(c, lottery.RedMax)
		if err != nil {
			return res, fmt.Errorf("line %d: red %d: %w", row.Line, i+1, err)
		}
		res.OrderReds[i] = n
	}
	res.Blue, err = lottery.ParseBall(blueCell, lottery.BlueMax)
	if err != nil {
		return res, fmt.Errorf("line %d: blue: %w", row.Line, err)
	}
	if err := res.Validate(); err != nil {
		return res, fmt.Errorf("line %d: %w", row.Line, err)
	}

	if sortedCells != nil {
		want := res.SortedReds()
		for i, c := range sortedCells {
			n, err := lottery.ParseBall(c, lottery.RedMax)
			if err != nil || n != want[i] {
				return res, fmt.Errorf("line %d: sorted reds do not match the draw order reds", row.Line)
			}
		}
	}
	return res, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"2006-1-2",
	"2006/1/2",
	"2006年01月02日",
	"2006年1月2日",
	"2006-01-02 15:04:05",
}

// ParseDate accepts spreadsheet serial dates and the common string layouts.
// A trailing weekday in parentheses, e.g. "2024-01-02(二)", is ignored.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "(（"); i > 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return time.Time{}, errors.New("missing draw date")
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && len(s) != 8 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid serial date %q: %w", s, err)
		}
		return truncateDay(t), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised draw date %q", s)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
