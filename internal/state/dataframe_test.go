package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesFrame() *DataFrame {
	return &DataFrame{
		Headers: []string{"ID", "REGION", "UNITS SOLD"},
		Rows: [][]string{
			{"V1", "North", "10"},
			{"V2", "South", "20"},
			{"V1", "", "30"},
			{"V3", "North"},
			{"V2", "East", "50"},
		},
	}
}

func TestHeadPreservesOrder(t *testing.T) {
	df := salesFrame()

	head := df.Head(3)
	if diff := cmp.Diff(df.Rows[:3], head.Rows); diff != "" {
		t.Errorf("head mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, df.Headers, head.Headers)

	assert.Len(t, df.Head(100).Rows, 5)
	assert.Empty(t, df.Head(-1).Rows)
}

func TestDistinctValuesSkipsEmptyAndKeepsFirstAppearance(t *testing.T) {
	df := salesFrame()

	regions, err := df.DistinctValues("REGION")
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South", "East"}, regions)

	_, err = df.DistinctValues("MISSING")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestFilterEquals(t *testing.T) {
	df := salesFrame()

	north, err := df.FilterEquals("REGION", "North")
	require.NoError(t, err)
	want := [][]string{{"V1", "North", "10"}, {"V3", "North"}}
	if diff := cmp.Diff(want, north.Rows); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}

	none, err := df.FilterEquals("REGION", "West")
	require.NoError(t, err)
	assert.Empty(t, none.Rows)
	assert.Equal(t, df.Headers, none.Headers)
}

func TestFilterInIsUnionInDatasetOrder(t *testing.T) {
	df := salesFrame()

	got, err := df.FilterIn("ID", []string{"V2", "V3"})
	require.NoError(t, err)
	want := [][]string{{"V2", "South", "20"}, {"V3", "North"}, {"V2", "East", "50"}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}

	_, err = df.FilterIn("VENDOR_ID", []string{"V1"})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestGetNumericColumnIndices(t *testing.T) {
	df := salesFrame()
	assert.Equal(t, map[int]bool{2: true}, df.GetNumericColumnIndices())

	empty := &DataFrame{Headers: []string{"A"}}
	assert.Nil(t, empty.GetNumericColumnIndices())

	blank := &DataFrame{Headers: []string{"A"}, Rows: [][]string{{""}, {""}}}
	assert.Empty(t, blank.GetNumericColumnIndices())
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" -2.5 ", -2.5, true},
		{"1,234.5", 1234.5, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
