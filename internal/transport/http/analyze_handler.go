package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ledgercli/internal/dataprocessing"
	apierrors "ledgercli/internal/errors"
	"ledgercli/internal/exporter"
	"ledgercli/internal/files"
	"ledgercli/internal/metrics"
	custommw "ledgercli/internal/middleware"
	"ledgercli/pkg/contracts/domain"
)

// analyzeForm mirrors the non-file form fields of an analyze request so they
// can be validated before touching the engine.
type analyzeForm struct {
	HeaderRow  int    `validate:"gte=0,lte=10000"`
	AutoDetect string `validate:"omitempty,oneof=true false"`
	Dedupe     string `validate:"omitempty,oneof=true false"`
	Ledger     string `validate:"omitempty,oneof=full deposit"`
}

// AnalyzeHandler handles statement analysis and export requests.
type AnalyzeHandler struct {
	analyzer     *dataprocessing.Analyzer
	composer     *exporter.WorkbookComposer
	ledger       *exporter.LedgerExporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	maxUpload    int64
	defaults     dataprocessing.Options
}

// NewAnalyzeHandler creates an analyze handler.
func NewAnalyzeHandler(
	analyzer *dataprocessing.Analyzer,
	composer *exporter.WorkbookComposer,
	ledger *exporter.LedgerExporter,
	maxUpload int64,
	defaults dataprocessing.Options,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:     analyzer,
		composer:     composer,
		ledger:       ledger,
		logger:       logger.With(slog.String("component", "analyze_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		maxUpload:    maxUpload,
		defaults:     defaults,
	}
}

// Routes returns the analysis routes.
func (h *AnalyzeHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/analyze", h.Analyze)
	r.Route("/export", func(r chi.Router) {
		r.Post("/workbook", h.ExportWorkbook)
		r.Post("/csv", h.ExportCSV)
	})

	return r
}

// Analyze handles POST /api/analyze. It parses the uploaded statement files,
// runs the pipeline and returns the full AnalysisResult as JSON.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	result, err := h.runAnalysis(w, r)
	metrics.RecordRun(err)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	metrics.ParsedTransactions.Add(float64(result.Diagnostics.ParsedRows))
	metrics.SkippedRows.Add(float64(result.Diagnostics.SkippedRows))
	metrics.DuplicatesRemoved.Add(float64(result.Diagnostics.DedupedRows))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

// ExportWorkbook handles POST /api/export/workbook. It re-runs analysis on
// the uploaded files and streams the three-sheet workbook.
func (h *AnalyzeHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	result, err := h.runAnalysis(w, r)
	metrics.RecordRun(err)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	f, err := h.composer.Compose(result)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	metrics.ExportsGenerated.WithLabelValues("workbook").Inc()

	name := fmt.Sprintf("ledger_%s.xlsx", result.RunID)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := f.Write(w); err != nil {
		h.logger.ErrorContext(r.Context(), "workbook streaming failed",
			slog.String("run_id", result.RunID),
			slog.String("error", err.Error()))
	}
}

// ExportCSV handles POST /api/export/csv. The "ledger" form field selects
// the full ledger (default) or the deposit-only one; the CSV streams
// straight to the response.
func (h *AnalyzeHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.runAnalysis(w, r)
	metrics.RecordRun(err)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	depositOnly := r.FormValue("ledger") == "deposit"
	kind := "full"
	if depositOnly {
		kind = "deposit"
	}

	// Emptiness is checked before any header goes out so the precondition
	// failure still renders as a JSON error.
	if len(result.Transactions) == 0 || (depositOnly && result.Totals.DepositDayCount == 0) {
		h.errorHandler.HandleError(w, r, apierrors.ErrNothingToExport)
		return
	}
	metrics.ExportsGenerated.WithLabelValues("csv").Inc()

	name := fmt.Sprintf("ledger_%s_%s.csv", kind, result.RunID)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if depositOnly {
		err = h.ledger.WriteDepositLedger(result, w)
	} else {
		err = h.ledger.WriteFullLedger(result, w)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "csv streaming failed",
			slog.String("run_id", result.RunID),
			slog.String("error", err.Error()))
	}
}

// runAnalysis parses the multipart request into an AnalysisRequest and runs
// the pipeline. All request-shape problems surface as APIErrors.
func (h *AnalyzeHandler) runAnalysis(w http.ResponseWriter, r *http.Request) (*dataprocessing.AnalysisResult, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, apierrors.InvalidRequestWithError(err)
	}

	req, err := h.buildRequest(r)
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(r.Context(), "analysis requested",
		slog.String("request_id", custommw.GetReqID(r.Context())),
		slog.Int("files", len(req.Sheets)))

	return h.analyzer.Analyze(r.Context(), *req)
}

func (h *AnalyzeHandler) buildRequest(r *http.Request) (*dataprocessing.AnalysisRequest, error) {
	form := analyzeForm{
		AutoDetect: r.FormValue("auto_detect"),
		Dedupe:     r.FormValue("dedupe"),
		Ledger:     r.FormValue("ledger"),
	}
	if raw := r.FormValue("header_row"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apierrors.ErrValidation("header_row", "must be a number")
		}
		form.HeaderRow = n
	}
	if err := h.validate.Struct(form); err != nil {
		return nil, apierrors.InvalidRequestWithError(err)
	}

	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		return nil, apierrors.ErrMissingFile
	}

	var sheets []domain.SourceSheet
	for _, fh := range uploads {
		part, err := fh.Open()
		if err != nil {
			return nil, apierrors.InvalidRequestWithError(err)
		}
		sheet, err := files.ReadWorkbookStream(part, fh.Filename)
		part.Close()
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, *sheet)
	}

	opts := h.defaults
	if form.AutoDetect != "" {
		opts.AutoDetect = form.AutoDetect == "true"
	}
	if form.Dedupe != "" {
		opts.Dedupe = form.Dedupe == "true"
	}

	return &dataprocessing.AnalysisRequest{
		Sheets: sheets,
		Override: domain.MappingOverride{
			Sequence:    r.FormValue("map_sequence"),
			DateTime:    r.FormValue("map_datetime"),
			Debit:       r.FormValue("map_debit"),
			Credit:      r.FormValue("map_credit"),
			Balance:     r.FormValue("map_balance"),
			Description: r.FormValue("map_description"),
			Memo:        r.FormValue("map_memo"),
			Branch:      r.FormValue("map_branch"),
			HeaderRow:   form.HeaderRow,
		},
		Options: opts,
	}, nil
}
