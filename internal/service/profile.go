package service

import (
	"math"

	"dashboard-go/internal/analysis"
	"dashboard-go/internal/models"
	"dashboard-go/internal/state"
)

// Profile reports non-null counts, distinct values and entropy for every
// column in header order.
func Profile(df *state.DataFrame) []models.ColumnProfile {
	kinds := analysis.InferColumnTypes(df)
	profiles := make([]models.ColumnProfile, len(df.Headers))
	for i, header := range df.Headers {
		profiles[i] = profileColumn(df, i)
		profiles[i].Kind = kinds[header]
	}
	return profiles
}

func profileColumn(df *state.DataFrame, colIdx int) models.ColumnProfile {
	profile := models.ColumnProfile{
		Column:    df.Headers[colIdx],
		TotalRows: df.NumRows(),
	}

	counts := make(map[string]int)
	for i := range df.Rows {
		val := df.Cell(i, colIdx)
		if state.IsMissing(val) {
			continue
		}
		profile.NonNull++
		counts[val]++
	}
	profile.DistinctCount = len(counts)

	if profile.TotalRows > 0 {
		profile.NullRate = float64(profile.TotalRows-profile.NonNull) / float64(profile.TotalRows)
	}
	profile.Entropy = entropy(counts, profile.NonNull)
	profile.IsUnique = profile.NonNull > 0 && profile.DistinctCount == profile.NonNull
	return profile
}

// entropy is the Shannon entropy in bits of the value distribution.
func entropy(counts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}
