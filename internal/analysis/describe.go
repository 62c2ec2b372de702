package analysis

import (
	"math"
	"sort"

	"dashboard-go/internal/models"
	"dashboard-go/internal/state"
)

// Describe computes count, mean, std, min, quartiles and max for every numeric
// column, in header order.
func Describe(df *state.DataFrame) models.Summary {
	numericCols := df.GetNumericColumnIndices()
	summary := models.Summary{}

	for colIdx, header := range df.Headers {
		if !numericCols[colIdx] {
			continue
		}
		values := numericValues(df, colIdx)
		if len(values) == 0 {
			continue
		}
		summary.Numeric = append(summary.Numeric, describeValues(header, values))
	}

	if len(summary.Numeric) > 0 {
		return summary
	}
	for colIdx, header := range df.Headers {
		summary.Categorical = append(summary.Categorical, describeCategorical(df, header, colIdx))
	}
	return summary
}

func describeValues(column string, values []float64) models.NumericSummary {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := models.NumericSummary{
		Column: column,
		Count:  len(sorted),
		Mean:   Mean(sorted),
		Min:    sorted[0],
		P25:    Quantile(sorted, 0.25),
		P50:    Quantile(sorted, 0.5),
		P75:    Quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		std := SampleStd(sorted)
		s.Std = &std
	}
	return s
}

func describeCategorical(df *state.DataFrame, column string, colIdx int) models.CategoricalSummary {
	s := models.CategoricalSummary{Column: column}
	counts := make(map[string]int)
	order := []string{}
	for i := range df.Rows {
		val := df.Cell(i, colIdx)
		if state.IsMissing(val) {
			continue
		}
		s.Count++
		if counts[val] == 0 {
			order = append(order, val)
		}
		counts[val]++
	}
	s.Unique = len(order)
	// ties go to the value seen first
	for _, v := range order {
		if counts[v] > s.Freq {
			s.Top = v
			s.Freq = counts[v]
		}
	}
	return s
}

func numericValues(df *state.DataFrame, colIdx int) []float64 {
	values := []float64{}
	for i := range df.Rows {
		if v, ok := state.ParseNumber(df.Cell(i, colIdx)); ok {
			values = append(values, v)
		}
	}
	return values
}

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// SampleStd computes the standard deviation with n-1 degrees of freedom.
func SampleStd(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return math.NaN()
	}
	mean := Mean(x)
	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Quantile returns the q-th quantile of sorted values using linear
// interpolation between the closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
