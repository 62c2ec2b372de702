package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"dashboard-go/internal/analysis"
	"dashboard-go/internal/models"
	"dashboard-go/internal/service"
	"dashboard-go/internal/state"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes bounds uploads when the handler is built without a limit.
const DefaultMaxUploadBytes = 32 << 20

type Handler struct {
	Spreadsheets   *analysis.SpreadsheetService
	Dashboard      *service.DashboardService
	Sessions       *state.Store
	MaxUploadBytes int64
	logger         *zap.Logger
}

func NewHandler(sheets *analysis.SpreadsheetService, dashboard *service.DashboardService, sessions *state.Store, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Spreadsheets:   sheets,
		Dashboard:      dashboard,
		Sessions:       sessions,
		MaxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(Sessions)

		r.Get("/", h.Root)
		r.Post("/api/upload", h.Upload)
		r.Get("/api/status", h.GetStatus)
		r.Get("/api/preview", h.GetPreview)
		r.Get("/api/summary", h.GetSummary)
		r.Get("/api/column-types", h.GetColumnTypes)
		r.Get("/api/profile", h.GetProfile)

		r.Get("/api/filter/region", h.FilterRegion)
		r.Get("/api/filter/vendor", h.FilterVendor)
		r.Get("/api/filter", h.FilterGeneral)

		r.Get("/api/graphs", h.GetGraphs)
		r.Get("/api/graphs/{metric}", h.GetMetricGraph)
		r.Get("/api/plot", h.GetPlot)

		r.Get("/api/dashboard", h.GetDashboard)
	})
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// Root reports the idle prompt or what is loaded
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.Status(h.dataset(r)))
}

// ============================================================================
// Upload
// ============================================================================

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	id := SessionID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (limit %d bytes)", h.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid upload form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	df, err := h.Spreadsheets.Parse(header.Filename, data, analysis.ParseOptions{Sheet: r.FormValue("sheet")})
	if err != nil {
		// A failed upload leaves the session without a dataset.
		h.Sessions.ClearDataFrame(id)
		h.logger.Warn("Upload parse failed",
			zap.String("session", id),
			zap.String("file", header.Filename),
			zap.Error(err))
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error reading the Excel file: %v", err))
		return
	}

	h.Sessions.SetDataFrame(id, df)
	h.logger.Info("Dataset loaded",
		zap.String("session", id),
		zap.String("file", header.Filename),
		zap.Int("rows", df.NumRows()),
		zap.Int("columns", len(df.Headers)))

	writeJSON(w, http.StatusOK, models.UploadResponse{
		Message:     fmt.Sprintf("File '%s' uploaded successfully", header.Filename),
		Sheet:       df.SheetName,
		Rows:        df.NumRows(),
		Columns:     len(df.Headers),
		ColumnNames: df.Headers,
	})
}

// ============================================================================
// Status, preview and summary
// ============================================================================

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.Status(h.dataset(r)))
}

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Dashboard.Preview(df, getIntParam(r, "rows", 0)))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Describe(df))
}

func (h *Handler) GetColumnTypes(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.InferColumnTypes(df))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, service.Profile(df))
}

// ============================================================================
// Filters
// ============================================================================

func (h *Handler) FilterRegion(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Dashboard.Filters.Region(df, r.URL.Query().Get("value")))
}

func (h *Handler) FilterVendor(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Dashboard.Filters.Vendor(df, getListParam(r, "id")))
}

func (h *Handler) FilterGeneral(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	section, _, err := h.Dashboard.Filters.General(df, q.Get("column"), q.Get("value"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, section)
}

// ============================================================================
// Graphs
// ============================================================================

func (h *Handler) GetGraphs(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Dashboard.Graphs(df, r.URL.Query().Get("x"), getListParam(r, "graph")))
}

func (h *Handler) GetMetricGraph(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	metric := chi.URLParam(r, "metric")

	data, err := h.Dashboard.MetricChart(df, metric, r.URL.Query().Get("x"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrUnknownMetric) {
			status = http.StatusNotFound
		}
		writeError(w, status, service.MetricChartError(metric, err))
		return
	}
	h.writeChart(w, r, data, func(err error) string { return service.MetricChartError(metric, err) })
}

func (h *Handler) GetPlot(w http.ResponseWriter, r *http.Request) {
	df, ok := h.requireDataset(w, r)
	if !ok {
		return
	}
	sel := selectionFromQuery(r)

	data, err := h.Dashboard.FilteredPlot(df, sel)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, service.PlotError(err))
		return
	}
	h.writeChart(w, r, data, service.PlotError)
}

func (h *Handler) writeChart(w http.ResponseWriter, r *http.Request, data models.ChartData, describe func(error) string) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "json" {
		writeJSON(w, http.StatusOK, data)
		return
	}

	img, contentType, err := h.Dashboard.Charts.Render(data, format)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrUnknownFormat) {
			status = http.StatusBadRequest
		}
		writeError(w, status, describe(err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(img)
}

// ============================================================================
// Dashboard
// ============================================================================

// GetDashboard re-evaluates every section against the current widget values.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Dashboard.Evaluate(h.dataset(r), selectionFromQuery(r)))
}

// ============================================================================
// Helpers
// ============================================================================

func (h *Handler) dataset(r *http.Request) *state.DataFrame {
	return h.Sessions.GetDataFrame(SessionID(r.Context()))
}

func (h *Handler) requireDataset(w http.ResponseWriter, r *http.Request) (*state.DataFrame, bool) {
	df := h.dataset(r)
	if df == nil {
		writeError(w, http.StatusBadRequest, service.IdleMessage)
		return nil, false
	}
	return df, true
}

func selectionFromQuery(r *http.Request) service.Selection {
	q := r.URL.Query()
	plot, _ := strconv.ParseBool(q.Get("plot"))
	return service.Selection{
		PreviewRows:  getIntParam(r, "rows", 0),
		Region:       q.Get("region"),
		Vendors:      getListParam(r, "vendor"),
		GraphX:       q.Get("graph_x"),
		Graphs:       getListParam(r, "graph"),
		FilterColumn: q.Get("column"),
		FilterValue:  q.Get("value"),
		PlotX:        q.Get("x"),
		PlotY:        q.Get("y"),
		Plot:         plot,
	}
}

func getIntParam(r *http.Request, name string, defaultVal int) int {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// getListParam collects a repeated query parameter, dropping empty values.
func getListParam(r *http.Request, name string) []string {
	var values []string
	for _, v := range r.URL.Query()[name] {
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
