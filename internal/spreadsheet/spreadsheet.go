// Package spreadsheet reads and writes the raw-material XLSX layout used
// for catalog import/export: Name | Unit | Sell Price | Purchase Price |
// Stock, one material per row, optional header row.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"warungpos/backend/internal/domain"
)

const sheetName = "Sheet1"

var headers = []string{"Name", "Unit", "Sell Price", "Purchase Price", "Stock"}

// ParseRawMaterials reads the first sheet of an XLSX stream into import
// rows. RowNumber is the 1-based spreadsheet row so import errors can point
// back at the file. Rows with malformed numbers come back as row errors,
// not a hard failure; blank rows are skipped.
func ParseRawMaterials(r io.Reader) ([]domain.RawMaterialImportRow, []domain.ImportRowError, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("workbook is empty")
	}

	start := 0
	if isHeaderRow(rows[0]) {
		start = 1
	}

	var (
		parsed    []domain.RawMaterialImportRow
		rowErrors []domain.ImportRowError
	)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		rowNumber := i + 1
		if isBlankRow(row) {
			continue
		}

		sellPrice, err := cellInt(row, 2)
		if err != nil {
			rowErrors = append(rowErrors, domain.ImportRowError{RowNumber: rowNumber, Message: "sell price is not a number"})
			continue
		}
		purchasePrice, err := cellInt(row, 3)
		if err != nil {
			rowErrors = append(rowErrors, domain.ImportRowError{RowNumber: rowNumber, Message: "purchase price is not a number"})
			continue
		}
		stock, err := cellInt(row, 4)
		if err != nil {
			rowErrors = append(rowErrors, domain.ImportRowError{RowNumber: rowNumber, Message: "stock is not a number"})
			continue
		}

		parsed = append(parsed, domain.RawMaterialImportRow{
			RowNumber:     rowNumber,
			Name:          cellString(row, 0),
			Unit:          cellString(row, 1),
			SellPrice:     sellPrice,
			PurchasePrice: purchasePrice,
			Stock:         stock,
		})
	}
	return parsed, rowErrors, nil
}

// BuildRawMaterials writes materials into a new workbook, one per row under
// a header row.
func BuildRawMaterials(materials []domain.RawMaterial) (*excelize.File, error) {
	file := excelize.NewFile()
	if _, err := file.NewSheet(sheetName); err != nil {
		return nil, err
	}

	col := 'A'
	for _, h := range headers {
		if err := file.SetCellValue(sheetName, string(col)+"1", h); err != nil {
			return nil, err
		}
		col++
	}

	for i, m := range materials {
		rowNo := fmt.Sprint(i + 2)
		values := []interface{}{m.Name, m.Unit, m.SellPrice, m.PurchasePrice, m.Stock}
		col := 'A'
		for _, value := range values {
			if err := file.SetCellValue(sheetName, string(col)+rowNo, value); err != nil {
				return nil, err
			}
			col++
		}
	}
	return file, nil
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToUpper(strings.TrimSpace(row[0]))
	return strings.Contains(first, "NAME") || strings.Contains(first, "NAMA")
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellString(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt(row []string, idx int) (int64, error) {
	raw := cellString(row, idx)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
