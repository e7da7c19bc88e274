package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-02", "2024/01/02", "2024.01.02", "20240102", "2024-1-2", "2024-01-02(二)", "45293"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestParseRowShortLayout(t *testing.T) {
	res, err := ParseRow(Row{Line: 2, Cells: []string{"24001", "2024-01-02", "9", "3", "21", "14", "30", "1", "5"}})
	require.NoError(t, err)
	assert.Equal(t, "2024001", res.Issue)
	assert.Equal(t, [6]int{9, 3, 21, 14, 30, 1}, res.OrderReds)
	assert.Equal(t, [6]int{1, 3, 9, 14, 21, 30}, res.SortedReds())
	assert.Equal(t, 5, res.Blue)
}

func TestParseRowFullLayout(t *testing.T) {
	cells := []string{"2024001", "2024-01-02", "01", "03", "09", "14", "21", "30", "09", "03", "21", "14", "30", "01", "05"}
	res, err := ParseRow(Row{Line: 2, Cells: cells})
	require.NoError(t, err)
	assert.Equal(t, [6]int{9, 3, 21, 14, 30, 1}, res.OrderReds)

	cells[2] = "02"
	_, err = ParseRow(Row{Line: 2, Cells: cells})
	assert.Error(t, err, "sorted columns must match the draw order columns")
}

func TestParseRowRejects(t *testing.T) {
	bad := [][]string{
		// issue digits
		{"2401", "2024-01-02", "9", "3", "21", "14", "30", "1", "5"},
		// duplicate red
		{"2024001", "2024-01-02", "9", "9", "21", "14", "30", "1", "5"},
		// red range
		{"2024001", "2024-01-02", "9", "3", "21", "14", "34", "1", "5"},
		// blue range
		{"2024001", "2024-01-02", "9", "3", "21", "14", "30", "1", "17"},
		// date
		{"2024001", "", "9", "3", "21", "14", "30", "1", "5"},
		// columns
		{"2024001", "2024-01-02", "9", "3"},
	}
	for _, cells := range bad {
		_, err := ParseRow(Row{Line: 3, Cells: cells})
		assert.Error(t, err, strings.Join(cells, ","))
	}
}

func TestReadRowsCSV(t *testing.T) {
	data := "\xEF\xBB\xBF期号,日期,r1,r2,r3,r4,r5,r6,蓝\n2024001,2024-01-02,9,3,21,14,30,1,5\n\n2024002,2024-01-04,2,4,6,8,10,12,12\n"
	rows, err := ReadRows(strings.NewReader(data), "history.CSV")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, IsHeader(rows[0]))
	assert.False(t, IsHeader(rows[1]))
	assert.Equal(t, 4, rows[2].Line)
}

func TestReadRowsUnsupported(t *testing.T) {
	_, err := ReadRows(strings.NewReader(""), "history.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadRowsXLSXSerialDates(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"期号", "开奖日期", "1", "2", "3", "4", "5", "6", "蓝"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{2024001, 45293, 9, 3, 21, 14, 30, 1, 5}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadRows(&buf, "draws.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	res, err := ParseRow(rows[1])
	require.NoError(t, err)
	assert.Equal(t, "2024001", res.Issue)
	assert.Equal(t, "2024-01-02", res.DrawDate.Format("2006-01-02"))
}

func TestWriteDrawsRoundTrip(t *testing.T) {
	src := lottery.Result{Issue: "2024001", DrawDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), OrderReds: [6]int{9, 3, 21, 14, 30, 1}, Blue: 5}
	var buf bytes.Buffer
	require.NoError(t, WriteDraws(&buf, []models.DrawModel{models.NewDrawModel(src)}))

	rows, err := ReadRows(&buf, "export.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, IsHeader(rows[0]))

	got, err := ParseRow(rows[1])
	require.NoError(t, err)
	assert.Equal(t, src, got)
}
