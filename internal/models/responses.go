package models

import "time"

// ErrorResponse is the body of every 4xx/5xx JSON reply
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadResponse is returned after successful file upload
type UploadResponse struct {
	Message     string   `json:"message"`
	Sheet       string   `json:"sheet"`
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
}

// StatusResponse is returned by /api/status
type StatusResponse struct {
	Loaded     bool       `json:"loaded"`
	Message    string     `json:"message,omitempty"`
	Filename   string     `json:"filename,omitempty"`
	Sheet      string     `json:"sheet,omitempty"`
	Rows       int        `json:"rows"`
	Columns    int        `json:"columns"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// Table is a row subset ready for display
type Table struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// NumericSummary holds the descriptive statistics of one numeric column.
// Std is nil when fewer than two values are present.
type NumericSummary struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	Std    *float64 `json:"std"`
	Min    float64  `json:"min"`
	P25    float64  `json:"25%"`
	P50    float64  `json:"50%"`
	P75    float64  `json:"75%"`
	Max    float64  `json:"max"`
}

// CategoricalSummary describes a text column
type CategoricalSummary struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// Summary is returned by /api/summary. Categorical is only populated when
// the dataset has no numeric columns.
type Summary struct {
	Numeric     []NumericSummary     `json:"numeric,omitempty"`
	Categorical []CategoricalSummary `json:"categorical,omitempty"`
}

// RegionSection is the single-choice region filter
type RegionSection struct {
	Column    string   `json:"column"`
	Available bool     `json:"available"`
	Warning   string   `json:"warning,omitempty"`
	Options   []string `json:"options,omitempty"`
	Selected  string   `json:"selected,omitempty"`
	Table     *Table   `json:"table,omitempty"`
}

// VendorSection is the multi-choice vendor filter
type VendorSection struct {
	Column    string   `json:"column"`
	Available bool     `json:"available"`
	Warning   string   `json:"warning,omitempty"`
	Info      string   `json:"info,omitempty"`
	Options   []string `json:"options,omitempty"`
	Selected  []string `json:"selected,omitempty"`
	Table     *Table   `json:"table,omitempty"`
}

// GraphsSection lists the metric charts that can be generated
type GraphsSection struct {
	Available bool         `json:"available"`
	Warning   string       `json:"warning,omitempty"`
	Metrics   []string     `json:"metrics,omitempty"`
	XOptions  []string     `json:"x_options,omitempty"`
	X         string       `json:"x,omitempty"`
	Charts    []ChartReply `json:"charts,omitempty"`
}

// GeneralSection is the free-form filter and plot
type GeneralSection struct {
	Columns      []string    `json:"columns"`
	Warning      string      `json:"warning,omitempty"`
	Column       string      `json:"column"`
	ValueOptions []string    `json:"value_options"`
	Value        string      `json:"value"`
	Table        *Table      `json:"table,omitempty"`
	X            string      `json:"x"`
	Y            string      `json:"y"`
	Plot         *ChartReply `json:"plot,omitempty"`
}

// ChartPoint is one (x, y) pair of a line chart
type ChartPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// ChartData is the series behind a rendered chart
type ChartData struct {
	Title   string       `json:"title"`
	XLabel  string       `json:"x_label"`
	YLabel  string       `json:"y_label"`
	XKind   string       `json:"x_kind"`
	Markers bool         `json:"markers"`
	Points  []ChartPoint `json:"points"`
}

// ChartReply is the outcome of one chart action. Error is set instead of
// Data when rendering failed.
type ChartReply struct {
	Metric string     `json:"metric,omitempty"`
	Data   *ChartData `json:"data,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// DashboardResponse is one full evaluation of the dashboard
type DashboardResponse struct {
	Loaded  bool            `json:"loaded"`
	Info    string          `json:"info,omitempty"`
	Status  *StatusResponse `json:"status,omitempty"`
	Preview *Table          `json:"preview,omitempty"`
	Summary *Summary        `json:"summary,omitempty"`
	Region  *RegionSection  `json:"region,omitempty"`
	Vendor  *VendorSection  `json:"vendor,omitempty"`
	Graphs  *GraphsSection  `json:"graphs,omitempty"`
	General *GeneralSection `json:"general,omitempty"`
}

// ColumnProfile reports the fill and spread of one column
type ColumnProfile struct {
	Column        string  `json:"column"`
	Kind          string  `json:"kind"`
	TotalRows     int     `json:"total_rows"`
	NonNull       int     `json:"non_null"`
	NullRate      float64 `json:"null_rate"`
	DistinctCount int     `json:"distinct_count"`
	Entropy       float64 `json:"entropy"`
	IsUnique      bool    `json:"is_unique"`
}
