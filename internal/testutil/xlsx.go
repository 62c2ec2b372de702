// Package testutil builds spreadsheet fixtures in memory.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// XLSX returns the bytes of a single-sheet workbook holding rows.
func XLSX(t testing.TB, rows [][]interface{}) []byte {
	t.Helper()
	return XLSXSheets(t, map[string][][]interface{}{"Sheet1": rows}, "Sheet1")
}

// XLSXSheets returns a workbook with the given sheets. order lists sheet
// names in workbook order; the first one replaces the default sheet.
func XLSXSheets(t testing.TB, sheets map[string][][]interface{}, order ...string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// SalesRows is a small dataset with region, vendor and metric columns.
func SalesRows() [][]interface{} {
	return [][]interface{}{
		{"DATE", "REGION", "ID", "UNITS SOLD", "TOTAL SALES", "AVERAGE SALES"},
		{"2024-01-01", "North", "V1", 10, 100.5, 10.05},
		{"2024-01-02", "South", "V2", 20, 210, 10.5},
		{"2024-01-03", "North", "V3", 15, 150, 10},
		{"2024-01-04", "East", "V1", 5, 60, 12},
		{"2024-01-05", "North", "V2", 25, 240, 9.6},
	}
}
