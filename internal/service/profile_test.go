package service

import (
	"testing"

	"dashboard-go/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	profiles := Profile(salesFrame())
	require.Len(t, profiles, 5)

	date := profiles[0]
	assert.Equal(t, "DATE", date.Column)
	assert.Equal(t, analysis.KindDatetime, date.Kind)
	assert.True(t, date.IsUnique)
	assert.Equal(t, 5, date.DistinctCount)

	region := profiles[1]
	assert.Equal(t, analysis.KindCategorical, region.Kind)
	assert.Equal(t, 4, region.NonNull)
	assert.InDelta(t, 0.2, region.NullRate, 1e-9)
	assert.Equal(t, 2, region.DistinctCount)
	assert.False(t, region.IsUnique)
	// North x3, South x1
	assert.InDelta(t, 0.8112781244591328, region.Entropy, 1e-9)

	units := profiles[3]
	assert.Equal(t, analysis.KindNumeric, units.Kind)
	assert.Equal(t, 0.0, units.NullRate)
}
