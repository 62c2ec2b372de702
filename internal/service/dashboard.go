package service

import (
	"errors"
	"fmt"
	"strings"

	"dashboard-go/internal/analysis"
	"dashboard-go/internal/models"
	"dashboard-go/internal/state"

	"go.uber.org/zap"
)

// IdleMessage is shown while no spreadsheet is loaded.
const IdleMessage = "Please upload an Excel file to begin."

// ErrUnknownMetric is returned for a metric outside the configured set or
// missing from the dataset.
var ErrUnknownMetric = errors.New("unknown metric column")

// Selection carries the widget values of one interaction.
type Selection struct {
	PreviewRows int
	Region      string
	Vendors     []string
	GraphX      string
	// Graphs lists the metric charts requested in this interaction.
	Graphs       []string
	FilterColumn string
	FilterValue  string
	PlotX        string
	PlotY        string
	Plot         bool
}

// DashboardService evaluates the whole dashboard against a dataset.
type DashboardService struct {
	Filters       *FilterService
	Charts        *ChartService
	MetricColumns []string
	PreviewRows   int
	logger        *zap.Logger
}

func NewDashboardService(filters *FilterService, charts *ChartService, metricColumns []string, previewRows int, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		Filters:       filters,
		Charts:        charts,
		MetricColumns: metricColumns,
		PreviewRows:   previewRows,
		logger:        logger,
	}
}

// Evaluate runs every section top to bottom. A nil dataset yields the idle
// prompt. Chart failures are reported inside their section.
func (s *DashboardService) Evaluate(df *state.DataFrame, sel Selection) models.DashboardResponse {
	if df == nil {
		return models.DashboardResponse{Info: IdleMessage}
	}

	status := Status(df)
	preview := s.Preview(df, sel.PreviewRows)
	summary := analysis.Describe(df)
	region := s.Filters.Region(df, sel.Region)
	vendor := s.Filters.Vendor(df, sel.Vendors)
	graphs := s.Graphs(df, sel.GraphX, sel.Graphs)

	resp := models.DashboardResponse{
		Loaded:  true,
		Status:  &status,
		Preview: preview,
		Summary: &summary,
		Region:  &region,
		Vendor:  &vendor,
		Graphs:  &graphs,
	}

	general, err := s.General(df, sel)
	if err != nil {
		s.logger.Info("General filter failed", zap.Error(err))
		general.Warning = err.Error()
	}
	resp.General = &general
	return resp
}

// Status describes the loaded dataset
func Status(df *state.DataFrame) models.StatusResponse {
	if df == nil {
		return models.StatusResponse{Message: IdleMessage}
	}
	uploaded := df.UploadedAt
	return models.StatusResponse{
		Loaded:     true,
		Filename:   df.FileName,
		Sheet:      df.SheetName,
		Rows:       df.NumRows(),
		Columns:    len(df.Headers),
		UploadedAt: &uploaded,
	}
}

// Preview returns the first n rows, falling back to the configured count.
func (s *DashboardService) Preview(df *state.DataFrame, n int) *models.Table {
	if n <= 0 {
		n = s.PreviewRows
	}
	head := df.Head(n)
	table := ToTable(head, 0)
	table.TotalRows = df.NumRows()
	return table
}

// AvailableMetrics returns the configured metric columns present in df.
func (s *DashboardService) AvailableMetrics(df *state.DataFrame) []string {
	available := []string{}
	for _, col := range s.MetricColumns {
		if df.HasColumn(col) {
			available = append(available, col)
		}
	}
	return available
}

// Graphs returns the metric graph section and renders the requested charts.
func (s *DashboardService) Graphs(df *state.DataFrame, x string, requested []string) models.GraphsSection {
	section := models.GraphsSection{}
	metrics := s.AvailableMetrics(df)
	if len(metrics) == 0 {
		quoted := make([]string, len(s.MetricColumns))
		for i, c := range s.MetricColumns {
			quoted[i] = fmt.Sprintf("'%s'", c)
		}
		section.Warning = fmt.Sprintf("Required columns for graphs (%s) not found.", strings.Join(quoted, ", "))
		return section
	}

	section.Available = true
	section.Metrics = metrics
	section.XOptions = df.Headers
	if x == "" && len(df.Headers) > 0 {
		x = df.Headers[0]
	}
	section.X = x

	for _, metric := range requested {
		reply := models.ChartReply{Metric: metric}
		data, err := s.MetricChart(df, metric, x)
		if err != nil {
			reply.Error = MetricChartError(metric, err)
		} else {
			reply.Data = &data
		}
		section.Charts = append(section.Charts, reply)
	}
	return section
}

// MetricChart builds the marker line chart of metric against x.
func (s *DashboardService) MetricChart(df *state.DataFrame, metric, x string) (models.ChartData, error) {
	if !containsString(s.AvailableMetrics(df), metric) {
		return models.ChartData{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if x == "" && len(df.Headers) > 0 {
		x = df.Headers[0]
	}
	data, err := s.Charts.BuildSeries(df, x, metric)
	if err != nil {
		s.logger.Info("Metric graph failed", zap.String("metric", metric), zap.String("x", x), zap.Error(err))
		return data, err
	}
	data.Markers = true
	if err := s.Charts.Validate(data); err != nil {
		s.logger.Info("Metric graph failed", zap.String("metric", metric), zap.String("x", x), zap.Error(err))
		return data, err
	}
	return data, nil
}

// MetricChartError formats a metric chart failure for display
func MetricChartError(metric string, err error) string {
	return fmt.Sprintf("Error generating %s graph: %v", metric, err)
}

// PlotError formats a general plot failure for display
func PlotError(err error) string {
	return fmt.Sprintf("Error generating plot: %v", err)
}

// General filters the dataset and, when asked, plots x/y of the filtered view.
func (s *DashboardService) General(df *state.DataFrame, sel Selection) (models.GeneralSection, error) {
	section, filtered, err := s.Filters.General(df, sel.FilterColumn, sel.FilterValue)
	if err != nil {
		return section, err
	}

	section.X = defaultColumn(df, sel.PlotX)
	section.Y = defaultColumn(df, sel.PlotY)
	if !sel.Plot {
		return section, nil
	}

	reply := models.ChartReply{}
	data, err := s.Charts.BuildSeries(filtered, section.X, section.Y)
	if err == nil {
		err = s.Charts.Validate(data)
	}
	if err != nil {
		s.logger.Info("Plot failed", zap.String("x", section.X), zap.String("y", section.Y), zap.Error(err))
		reply.Error = PlotError(err)
	} else {
		reply.Data = &data
	}
	section.Plot = &reply
	return section, nil
}

// FilteredPlot returns the chart data of the general filter and plot. The
// data is validated against the renderer so every output format agrees.
func (s *DashboardService) FilteredPlot(df *state.DataFrame, sel Selection) (models.ChartData, error) {
	_, filtered, err := s.Filters.General(df, sel.FilterColumn, sel.FilterValue)
	if err != nil {
		return models.ChartData{}, err
	}
	data, err := s.Charts.BuildSeries(filtered, defaultColumn(df, sel.PlotX), defaultColumn(df, sel.PlotY))
	if err != nil {
		return data, err
	}
	if err := s.Charts.Validate(data); err != nil {
		s.logger.Info("Plot failed", zap.String("x", data.XLabel), zap.String("y", data.YLabel), zap.Error(err))
		return data, err
	}
	return data, nil
}

func defaultColumn(df *state.DataFrame, col string) string {
	if col == "" && len(df.Headers) > 0 {
		return df.Headers[0]
	}
	return col
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
