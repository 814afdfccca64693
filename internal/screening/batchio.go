package screening

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrMissingNameColumn = errors.New("CSV must have a 'name' column")

var batchHeaders = []string{"Entity Name", "Status", "Match Score", "Verdict", "Reasoning"}

const batchSheet = "Screening Results"

// ReadBatch reads batch input, choosing XLSX or CSV by the file extension.
func ReadBatch(r io.Reader, filename string) ([]Input, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ReadXLSX(r)
	}
	return ReadCSV(r)
}

func ReadCSV(r io.Reader) ([]Input, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsToInputs(records)
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]Input, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file has no sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rowsToInputs(rows)
}

// rowsToInputs maps a header row (case-insensitive) plus data rows to inputs.
// Fully blank rows are skipped.
func rowsToInputs(rows [][]string) ([]Input, error) {
	if len(rows) == 0 {
		return nil, ErrMissingNameColumn
	}
	nameCol, countryCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "name":
			if nameCol < 0 {
				nameCol = i
			}
		case "country":
			if countryCol < 0 {
				countryCol = i
			}
		}
	}
	if nameCol < 0 {
		return nil, ErrMissingNameColumn
	}

	inputs := make([]Input, 0, len(rows)-1)
	for _, row := range rows[1:] {
		in := Input{Name: cell(row, nameCol), Country: cell(row, countryCol)}
		if in.Name == "" && in.Country == "" && blank(row) {
			continue
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r BatchRow) record() []string {
	return []string{r.EntityName, string(r.Status), strconv.Itoa(r.MatchScore), r.Verdict, r.Reasoning}
}

func WriteCSV(w io.Writer, rows []BatchRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(batchHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, rows []BatchRow) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(batchSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	flaggedStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
	})
	if err != nil {
		return fmt.Errorf("failed to create flagged style: %w", err)
	}

	for col, header := range batchHeaders {
		if err := setCellValue(f, col+1, 1, header); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(batchSheet, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, r := range rows {
		rowNum := i + 2
		values := []any{r.EntityName, string(r.Status), r.MatchScore, r.Verdict, r.Reasoning}
		for col, v := range values {
			if err := setCellValue(f, col+1, rowNum, v); err != nil {
				return err
			}
		}
		if r.Status == StatusFlagged {
			cellName, _ := excelize.CoordinatesToCellName(2, rowNum)
			if err := f.SetCellStyle(batchSheet, cellName, cellName, flaggedStyle); err != nil {
				return fmt.Errorf("failed to set status style: %w", err)
			}
		}
	}

	if err := f.SetColWidth(batchSheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(batchSheet, "E", "E", 60); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setCellValue(f *excelize.File, col, row int, value any) error {
	cellName, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellValue(batchSheet, cellName, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cellName, err)
	}
	return nil
}
