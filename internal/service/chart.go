package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"dashboard-go/internal/analysis"
	"dashboard-go/internal/models"
	"dashboard-go/internal/state"

	"github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"
)

var (
	// ErrNonNumeric is returned when a y column holds text.
	ErrNonNumeric = errors.New("non-numeric value")
	// ErrNoPoints is returned when nothing is left to plot.
	ErrNoPoints = errors.New("no data points to plot")
	// ErrUnknownFormat is returned for an unsupported image format.
	ErrUnknownFormat = errors.New("unknown chart format")
)

// X axis kinds
const (
	XKindNumeric     = "numeric"
	XKindTime        = "time"
	XKindCategorical = "categorical"
)

// Image formats understood by Render
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ChartService turns data frames into line charts.
type ChartService struct {
	Width  int
	Height int
	logger *zap.Logger
}

func NewChartService(width, height int, logger *zap.Logger) *ChartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartService{Width: width, Height: height, logger: logger}
}

// BuildSeries collects the (x, y) pairs of df in row order. Rows with an
// empty y cell are gaps and are skipped; any other non-numeric y cell is an
// error.
func (s *ChartService) BuildSeries(df *state.DataFrame, x, y string) (models.ChartData, error) {
	data := models.ChartData{
		Title:  fmt.Sprintf("%s over %s", y, x),
		XLabel: x,
		YLabel: y,
	}

	xs, err := df.Column(x)
	if err != nil {
		return data, err
	}
	ys, err := df.Column(y)
	if err != nil {
		return data, err
	}

	points := []models.ChartPoint{}
	for i := range ys {
		if state.IsMissing(ys[i]) {
			continue
		}
		v, ok := state.ParseNumber(ys[i])
		if !ok {
			return data, fmt.Errorf("%w %q in column %q (row %d)", ErrNonNumeric, ys[i], y, i+1)
		}
		points = append(points, models.ChartPoint{X: xs[i], Y: v})
	}
	if len(points) == 0 {
		return data, ErrNoPoints
	}

	data.Points = points
	data.XKind = xKind(points)
	return data, nil
}

// Render draws data as a line chart in the given image format and returns
// the bytes and their content type.
func (s *ChartService) Render(data models.ChartData, format string) ([]byte, string, error) {
	var (
		provider    chart.RendererProvider
		contentType string
	)
	switch format {
	case "", FormatPNG:
		provider, contentType = chart.PNG, "image/png"
	case FormatSVG:
		provider, contentType = chart.SVG, "image/svg+xml"
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	graph, err := s.graph(data)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := graph.Render(provider, &buf); err != nil {
		s.logger.Warn("Chart render failed", zap.String("title", data.Title), zap.Error(err))
		return nil, "", fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), contentType, nil
}

// Validate renders data and discards the output so that layout failures
// surface with the chart action that asked for it.
func (s *ChartService) Validate(data models.ChartData) error {
	_, _, err := s.Render(data, FormatSVG)
	return err
}

func (s *ChartService) graph(data models.ChartData) (chart.Chart, error) {
	if len(data.Points) == 0 {
		return chart.Chart{}, ErrNoPoints
	}

	style := chart.Style{StrokeWidth: 2}
	if data.Markers || len(data.Points) == 1 {
		style.DotWidth = 4
	}

	yValues := make([]float64, len(data.Points))
	for i, p := range data.Points {
		yValues[i] = p.Y
	}

	xAxis := chart.XAxis{Name: data.XLabel}
	var series chart.Series
	switch data.XKind {
	case XKindNumeric:
		xValues := make([]float64, len(data.Points))
		for i, p := range data.Points {
			xValues[i], _ = state.ParseNumber(p.X)
		}
		if r := padRange(xValues, 1); r != nil {
			xAxis.Range = r
		}
		series = chart.ContinuousSeries{Name: data.YLabel, XValues: xValues, YValues: yValues, Style: style}
	case XKindTime:
		xValues := make([]time.Time, len(data.Points))
		positions := make([]float64, len(data.Points))
		for i, p := range data.Points {
			xValues[i], _ = analysis.ParseDate(p.X)
			positions[i] = chart.TimeToFloat64(xValues[i])
		}
		if r := padRange(positions, float64(24*time.Hour)); r != nil {
			xAxis.Range = r
		}
		series = chart.TimeSeries{Name: data.YLabel, XValues: xValues, YValues: yValues, Style: style}
	default:
		// Categories are plotted at their row position and labelled with the cell text.
		xValues := make([]float64, len(data.Points))
		ticks := make([]chart.Tick, len(data.Points))
		for i, p := range data.Points {
			xValues[i] = float64(i)
			ticks[i] = chart.Tick{Value: float64(i), Label: p.X}
		}
		// A lone category gets blank ticks on both sides so the axis has a span.
		if r := padRange(xValues, 1); r != nil {
			ticks = append([]chart.Tick{{Value: r.Min}}, append(ticks, chart.Tick{Value: r.Max})...)
		}
		xAxis.Ticks = ticks
		series = chart.ContinuousSeries{Name: data.YLabel, XValues: xValues, YValues: yValues, Style: style}
	}

	graph := chart.Chart{
		Title:      data.Title,
		Width:      s.Width,
		Height:     s.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: data.YLabel},
		Series:     []chart.Series{series},
	}
	if r := padRange(yValues, 1); r != nil {
		graph.YAxis.Range = r
	}
	return graph, nil
}

// padRange widens a zero-span axis by pad on each side. It returns nil when
// the values already span a range.
func padRange(values []float64, pad float64) *chart.ContinuousRange {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min != max {
		return nil
	}
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}

func xKind(points []models.ChartPoint) string {
	numeric, dates := true, true
	for _, p := range points {
		if _, ok := state.ParseNumber(p.X); !ok {
			numeric = false
		}
		if _, ok := analysis.ParseDate(p.X); !ok {
			dates = false
		}
		if !numeric && !dates {
			return XKindCategorical
		}
	}
	if numeric {
		return XKindNumeric
	}
	return XKindTime
}
