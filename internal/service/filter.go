package service

import (
	"fmt"

	"dashboard-go/internal/models"
	"dashboard-go/internal/state"
)

// FilterService builds the region, vendor and general filter sections.
type FilterService struct {
	RegionColumn string
	VendorColumn string
	// MaxTableRows caps displayed rows; zero shows everything.
	MaxTableRows int
}

func NewFilterService(regionColumn, vendorColumn string, maxTableRows int) *FilterService {
	return &FilterService{
		RegionColumn: regionColumn,
		VendorColumn: vendorColumn,
		MaxTableRows: maxTableRows,
	}
}

// Region returns the single-choice region filter. An empty selection picks
// the first option. A selection that is not an option yields an empty table.
func (s *FilterService) Region(df *state.DataFrame, selected string) models.RegionSection {
	section := models.RegionSection{Column: s.RegionColumn}
	if !df.HasColumn(s.RegionColumn) {
		section.Warning = fmt.Sprintf("No '%s' column found in the data.", s.RegionColumn)
		return section
	}
	section.Available = true

	options, _ := df.DistinctValues(s.RegionColumn)
	section.Options = options
	if selected == "" {
		if len(options) == 0 {
			return section
		}
		selected = options[0]
	}
	section.Selected = selected

	filtered, _ := df.FilterEquals(s.RegionColumn, selected)
	section.Table = ToTable(filtered, s.MaxTableRows)
	return section
}

// Vendor returns the multi-choice vendor filter. With nothing selected it
// carries an info prompt instead of a table.
func (s *FilterService) Vendor(df *state.DataFrame, selected []string) models.VendorSection {
	section := models.VendorSection{Column: s.VendorColumn}
	if !df.HasColumn(s.VendorColumn) {
		section.Warning = fmt.Sprintf("No '%s' column found in the data.", s.VendorColumn)
		return section
	}
	section.Available = true

	options, _ := df.DistinctValues(s.VendorColumn)
	section.Options = options

	selected = dedupe(selected)
	if len(selected) == 0 {
		section.Info = "Select at least one vendor ID."
		return section
	}
	section.Selected = selected

	filtered, _ := df.FilterIn(s.VendorColumn, selected)
	section.Table = ToTable(filtered, s.MaxTableRows)
	return section
}

// General filters rows by any column/value pair. Empty column and value
// default to the first column and its first distinct value.
func (s *FilterService) General(df *state.DataFrame, column, value string) (models.GeneralSection, *state.DataFrame, error) {
	section := models.GeneralSection{Columns: df.Headers}
	if column == "" {
		if len(df.Headers) == 0 {
			return section, nil, fmt.Errorf("%w: dataset has no columns", state.ErrColumnNotFound)
		}
		column = df.Headers[0]
	}

	options, err := df.DistinctValues(column)
	if err != nil {
		return section, nil, err
	}
	section.Column = column
	section.ValueOptions = options

	if value == "" && len(options) > 0 {
		value = options[0]
	}
	section.Value = value

	filtered, err := df.FilterEquals(column, value)
	if err != nil {
		return section, nil, err
	}
	section.Table = ToTable(filtered, s.MaxTableRows)
	return section, filtered, nil
}

// ToTable converts a frame to its display form, keeping at most limit rows
// when limit is positive.
func ToTable(df *state.DataFrame, limit int) *models.Table {
	rows := df.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(df.Headers))
		copy(cells, row)
		out[i] = cells
	}
	return &models.Table{
		Columns:   df.Headers,
		Rows:      out,
		TotalRows: len(df.Rows),
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := []string{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
