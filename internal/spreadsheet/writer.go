package spreadsheet

import (
	"fmt"
	"io"

	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "SSQ"

var exportHeaders = []string{
	"期号", "开奖日期",
	"红球1", "红球2", "红球3", "红球4", "红球5", "红球6",
	"出球1", "出球2", "出球3", "出球4", "出球5", "出球6",
	"蓝球",
}

// WriteDraws writes draws as a workbook in the full layout, readable by ReadRows
func WriteDraws(w io.Writer, draws []models.DrawModel) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return err
	}

	for i, d := range draws {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, 0, len(exportHeaders))
		row = append(row, d.IssueNumber, d.DrawDate.Format("2006-01-02"))
		for _, r := range d.SortedReds() {
			row = append(row, r)
		}
		for _, r := range d.OrderReds() {
			row = append(row, r)
		}
		row = append(row, d.Blue)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
