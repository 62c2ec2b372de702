package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard-go/internal/analysis"
	"dashboard-go/internal/api"
	"dashboard-go/internal/config"
	"dashboard-go/internal/logging"
	"dashboard-go/internal/models"
	"dashboard-go/internal/service"
	"dashboard-go/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.Config
	logger *zap.Logger

	sheetName   string
	previewRows int
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Spreadsheet dashboard: upload a workbook, filter rows, chart metrics",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Print the preview and summary statistics of a workbook as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	describeCmd.Flags().StringVar(&sheetName, "sheet", "", "sheet to read (default: first sheet)")
	describeCmd.Flags().IntVar(&previewRows, "rows", 0, "preview rows (default: dashboard.preview_rows)")
	rootCmd.AddCommand(serveCmd, describeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newDashboard() *service.DashboardService {
	return service.NewDashboardService(
		service.NewFilterService(cfg.Dashboard.RegionColumn, cfg.Dashboard.VendorColumn, cfg.Dashboard.MaxTableRows),
		service.NewChartService(cfg.Chart.Width, cfg.Chart.Height, logger),
		cfg.Dashboard.MetricColumns,
		cfg.Dashboard.PreviewRows,
		logger,
	)
}

func newRouter() http.Handler {
	sheets := analysis.NewSpreadsheetService(logger)
	sessions := state.NewStore(cfg.Session.TTL)
	handler := api.NewHandler(sheets, newDashboard(), sessions, cfg.Upload.MaxBytes, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", api.SessionHeader},
		ExposedHeaders:   []string{api.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handler.RegisterRoutes(r)
	return r
}

func runServe(cmd *cobra.Command, args []string) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting dashboard server",
			zap.String("addr", "http://localhost:"+cfg.Server.Port),
			zap.Strings("cors_origins", cfg.Server.AllowedOrigins),
			zap.Int64("max_upload_bytes", cfg.Upload.MaxBytes))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type describeOutput struct {
	Status  models.StatusResponse  `json:"status"`
	Preview *models.Table          `json:"preview"`
	Summary models.Summary         `json:"summary"`
	Types   map[string]string      `json:"column_types"`
	Profile []models.ColumnProfile `json:"profile"`
}

func runDescribe(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	df, err := analysis.NewSpreadsheetService(logger).Parse(args[0], data, analysis.ParseOptions{Sheet: sheetName})
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	return writeDescribe(cmd.OutOrStdout(), newDashboard(), df, previewRows)
}

func writeDescribe(w io.Writer, dashboard *service.DashboardService, df *state.DataFrame, rows int) error {
	out := describeOutput{
		Status:  service.Status(df),
		Preview: dashboard.Preview(df, rows),
		Summary: analysis.Describe(df),
		Types:   analysis.InferColumnTypes(df),
		Profile: service.Profile(df),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
