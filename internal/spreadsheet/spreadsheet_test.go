package spreadsheet

import (
	"bytes"
	"testing"

	"warungpos/backend/internal/domain"
)

func TestBuildAndParseRoundTrip(t *testing.T) {
	materials := []domain.RawMaterial{
		{Name: "Kopi Bubuk Robusta", Unit: "kg", SellPrice: 95000, PurchasePrice: 72000, Stock: 40},
		{Name: "Gula Pasir", Unit: "kg", SellPrice: 18000, PurchasePrice: 14500, Stock: 80},
	}

	workbook, err := BuildRawMaterials(materials)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, rowErrors, err := ParseRawMaterials(&buf)
	if err != nil {
		t.Fatalf("parse workbook: %v", err)
	}
	if len(rowErrors) != 0 {
		t.Fatalf("expected no row errors, got %+v", rowErrors)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Kopi Bubuk Robusta" || rows[0].PurchasePrice != 72000 || rows[0].Stock != 40 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	// Data starts under the header, so the first material sits on row 2.
	if rows[0].RowNumber != 2 {
		t.Fatalf("expected row number 2, got %d", rows[0].RowNumber)
	}
}

func TestParseReportsMalformedNumbersPerRow(t *testing.T) {
	workbook, err := BuildRawMaterials([]domain.RawMaterial{
		{Name: "Telur Ayam", Unit: "kg", SellPrice: 30000, PurchasePrice: 26000, Stock: 45},
	})
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	if err := workbook.SetCellValue("Sheet1", "C2", "tiga puluh ribu"); err != nil {
		t.Fatalf("corrupt cell: %v", err)
	}
	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, rowErrors, err := ParseRawMaterials(&buf)
	if err != nil {
		t.Fatalf("parse workbook: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected corrupted row to be rejected, got %+v", rows)
	}
	if len(rowErrors) != 1 || rowErrors[0].RowNumber != 2 {
		t.Fatalf("expected one error on row 2, got %+v", rowErrors)
	}
}
