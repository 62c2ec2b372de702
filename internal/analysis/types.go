package analysis

import (
	"strings"
	"time"

	"dashboard-go/internal/state"
)

// Column kinds reported by InferColumnTypes.
const (
	KindNumeric     = "numeric"
	KindDatetime    = "datetime"
	KindCategorical = "categorical"
)

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06",
	"1/2/06 15:04",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-06",
}

// ParseDate tries the date layouts spreadsheets commonly render.
func ParseDate(val string) (time.Time, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}, false
	}
	for _, f := range dateFormats {
		if t, err := time.Parse(f, val); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InferColumnTypes classifies every column as numeric, datetime or categorical.
func InferColumnTypes(df *state.DataFrame) map[string]string {
	types := make(map[string]string, len(df.Headers))
	numericCols := df.GetNumericColumnIndices()

	for i, header := range df.Headers {
		switch {
		case numericCols[i]:
			types[header] = KindNumeric
		case isDateColumn(df, i):
			types[header] = KindDatetime
		default:
			types[header] = KindCategorical
		}
	}
	return types
}

func isDateColumn(df *state.DataFrame, colIdx int) bool {
	seen := 0
	for i := range df.Rows {
		val := df.Cell(i, colIdx)
		if state.IsMissing(val) {
			continue
		}
		if _, ok := ParseDate(val); !ok {
			return false
		}
		seen++
	}
	return seen > 0
}
