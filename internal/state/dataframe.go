package state

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrColumnNotFound is returned when a requested column is not in the headers.
var ErrColumnNotFound = errors.New("column not found")

// DataFrame represents a loaded spreadsheet with its data
type DataFrame struct {
	Headers    []string
	Rows       [][]string
	FileName   string
	SheetName  string
	UploadedAt time.Time
}

// NumRows returns the number of data rows
func (df *DataFrame) NumRows() int {
	return len(df.Rows)
}

// ColumnIndex returns the index of the named column, or -1
func (df *DataFrame) ColumnIndex(name string) int {
	for i, h := range df.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists
func (df *DataFrame) HasColumn(name string) bool {
	return df.ColumnIndex(name) >= 0
}

// Cell returns the cell at row/col, treating missing trailing cells as empty.
func (df *DataFrame) Cell(row, col int) string {
	if row < 0 || row >= len(df.Rows) || col < 0 || col >= len(df.Rows[row]) {
		return ""
	}
	return df.Rows[row][col]
}

// Column returns all cells of the named column in row order.
func (df *DataFrame) Column(name string) ([]string, error) {
	idx := df.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	values := make([]string, len(df.Rows))
	for i := range df.Rows {
		values[i] = df.Cell(i, idx)
	}
	return values, nil
}

// Head returns a view of the first n rows, order preserved.
func (df *DataFrame) Head(n int) *DataFrame {
	if n < 0 {
		n = 0
	}
	if n > len(df.Rows) {
		n = len(df.Rows)
	}
	return df.withRows(df.Rows[:n])
}

// DistinctValues returns the distinct non-empty values of a column in order
// of first appearance.
func (df *DataFrame) DistinctValues(name string) ([]string, error) {
	values, err := df.Column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	distinct := []string{}
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	return distinct, nil
}

// FilterEquals returns the rows whose column equals value.
func (df *DataFrame) FilterEquals(name, value string) (*DataFrame, error) {
	return df.FilterIn(name, []string{value})
}

// FilterIn returns the rows whose column is any of values, in dataset order.
func (df *DataFrame) FilterIn(name string, values []string) (*DataFrame, error) {
	idx := df.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	wanted := make(map[string]struct{}, len(values))
	for _, v := range values {
		wanted[v] = struct{}{}
	}
	filtered := [][]string{}
	for i, row := range df.Rows {
		if _, ok := wanted[df.Cell(i, idx)]; ok {
			filtered = append(filtered, row)
		}
	}
	return df.withRows(filtered), nil
}

// GetNumericColumnIndices returns indices of columns where every non-empty
// cell parses as a number and at least one cell is present.
func (df *DataFrame) GetNumericColumnIndices() map[int]bool {
	if len(df.Rows) == 0 {
		return nil
	}

	numericCols := make(map[int]bool)
	for colIdx := range df.Headers {
		isNumeric := true
		seen := 0
		for i := range df.Rows {
			val := df.Cell(i, colIdx)
			if IsMissing(val) {
				continue
			}
			if _, ok := ParseNumber(val); !ok {
				isNumeric = false
				break
			}
			seen++
		}
		if isNumeric && seen > 0 {
			numericCols[colIdx] = true
		}
	}
	return numericCols
}

// ParseNumber parses a spreadsheet cell as a float, accepting thousands
// separators. Empty cells and NaN text are not numbers.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsMissing reports whether a cell holds no value.
func IsMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaN", "nan", "#N/A", "NULL", "null":
		return true
	}
	return false
}

func (df *DataFrame) withRows(rows [][]string) *DataFrame {
	return &DataFrame{
		Headers:    df.Headers,
		Rows:       rows,
		FileName:   df.FileName,
		SheetName:  df.SheetName,
		UploadedAt: df.UploadedAt,
	}
}
