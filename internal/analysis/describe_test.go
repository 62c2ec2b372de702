package analysis

import (
	"math"
	"testing"

	"dashboard-go/internal/models"
	"dashboard-go/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeNumericColumns(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"NAME", "UNITS", "PRICE"},
		Rows: [][]string{
			{"a", "1", "10"},
			{"b", "2", ""},
			{"c", "3", "30"},
			{"d", "4", "20"},
		},
	}

	summary := Describe(df)
	require.Len(t, summary.Numeric, 2)
	assert.Empty(t, summary.Categorical)

	units := summary.Numeric[0]
	assert.Equal(t, "UNITS", units.Column)
	assert.Equal(t, 4, units.Count)
	assert.InDelta(t, 2.5, units.Mean, 1e-9)
	require.NotNil(t, units.Std)
	assert.InDelta(t, math.Sqrt(5.0/3.0), *units.Std, 1e-9)
	assert.Equal(t, 1.0, units.Min)
	assert.InDelta(t, 1.75, units.P25, 1e-9)
	assert.InDelta(t, 2.5, units.P50, 1e-9)
	assert.InDelta(t, 3.25, units.P75, 1e-9)
	assert.Equal(t, 4.0, units.Max)

	price := summary.Numeric[1]
	assert.Equal(t, "PRICE", price.Column)
	assert.Equal(t, 3, price.Count)
	assert.InDelta(t, 20.0, price.Mean, 1e-9)
	assert.InDelta(t, 10.0, *price.Std, 1e-9)
	assert.InDelta(t, 20.0, price.P50, 1e-9)
}

func TestDescribeSingleValueHasNoStd(t *testing.T) {
	df := &state.DataFrame{Headers: []string{"X"}, Rows: [][]string{{"7"}}}

	summary := Describe(df)
	require.Len(t, summary.Numeric, 1)
	assert.Nil(t, summary.Numeric[0].Std)
	assert.Equal(t, 7.0, summary.Numeric[0].P25)
	assert.Equal(t, 7.0, summary.Numeric[0].P75)
}

func TestDescribeFallsBackToCategorical(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"REGION", "ID"},
		Rows: [][]string{
			{"North", "V1"},
			{"South", "V2"},
			{"North", ""},
			{"South", "V1"},
		},
	}

	summary := Describe(df)
	assert.Empty(t, summary.Numeric)
	assert.Equal(t, []models.CategoricalSummary{
		{Column: "REGION", Count: 4, Unique: 2, Top: "North", Freq: 2},
		{Column: "ID", Count: 3, Unique: 2, Top: "V1", Freq: 2},
	}, summary.Categorical)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 2.0, Quantile(sorted, 0.25))
	assert.Equal(t, 3.0, Quantile(sorted, 0.5))
	assert.Equal(t, 5.0, Quantile(sorted, 1))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestInferColumnTypes(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"DATE", "UNITS", "REGION", "EMPTY"},
		Rows: [][]string{
			{"2024-01-01", "10", "North", ""},
			{"2024-02-01", "", "South", ""},
		},
	}
	assert.Equal(t, map[string]string{
		"DATE":   KindDatetime,
		"UNITS":  KindNumeric,
		"REGION": KindCategorical,
		"EMPTY":  KindCategorical,
	}, InferColumnTypes(df))
}
