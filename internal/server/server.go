// Package server exposes the mortgage calculator and saved calculations over
// a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/internal/export"
	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"github.com/iwvelando/mortgage-calculator/internal/optimizer"
	"github.com/iwvelando/mortgage-calculator/internal/storage"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/datetime"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

const requestTimeout = 30 * time.Second

type handler struct {
	logger        *zap.Logger
	calc          *calculator.Service
	optimizer     *optimizer.Runner
	store         storage.Store
	maxUploadSize int64
	version       string
	now           func() time.Time
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, calc *calculator.Service, store storage.Store, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = calculator.NewService(logger)
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		calc:          calc,
		optimizer:     optimizer.NewRunner(logger),
		store:         store,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		now:           time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)

		// Stateless calculations.
		r.Post("/calculate", h.handleCalculate)
		r.Post("/evaluate", h.handleEvaluate)
		r.Post("/payoff", h.handlePayoff)
		r.Post("/scenarios", h.handleScenarios)
		r.Post("/compare", h.handleCompare)
		r.Post("/optimize", h.handleOptimize)

		// Last entered inputs.
		r.Get("/values", h.handleGetValues)
		r.Put("/values", h.handlePutValues)

		// Saved calculations.
		r.Get("/calculations", h.handleListCalculations)
		r.Post("/calculations", h.handleCreateCalculation)
		r.Get("/calculations/{id}", h.handleGetCalculation)
		r.Put("/calculations/{id}", h.handleUpdateCalculation)
		r.Delete("/calculations/{id}", h.handleDeleteCalculation)
		r.Get("/calculations/{id}/export", h.handleExportCalculation)
		r.Post("/import", h.handleImport)
	})

	return r
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"

	req := calculator.Request{Investment: defaultInvestment()}
	if !h.decode(w, r, &req, op) {
		return
	}

	report, err := h.calc.Calculate(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	if err := h.store.SaveValues(r.Context(), req.Loan); err != nil {
		h.logger.Warn("failed to remember calculator values",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"

	var loan mortgage.LoanScenario
	if !h.decode(w, r, &loan, op) {
		return
	}
	result, err := h.calc.Evaluate(r.Context(), loan)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handlePayoff(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePayoff"

	var req calculator.PayoffRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	report, err := h.calc.Payoff(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarios"

	var req calculator.ScenarioRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	result, err := h.calc.Scenarios(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"

	req := calculator.CompareRequest{Investment: defaultInvestment()}
	if !h.decode(w, r, &req, op) {
		return
	}
	result, err := h.calc.Compare(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOptimize"

	var target optimizer.Target
	if !h.decode(w, r, &target, op) {
		return
	}
	summary, err := h.optimizer.Run(target)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleGetValues(w http.ResponseWriter, r *http.Request) {
	values, err := h.store.LoadValues(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "server.handleGetValues")
		return
	}
	h.writeJSON(w, http.StatusOK, values)
}

func (h *handler) handlePutValues(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutValues"

	var loan mortgage.LoanScenario
	if !h.decode(w, r, &loan, op) {
		return
	}
	if err := h.store.SaveValues(r.Context(), loan); err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// calculationPayload is the body accepted when saving or updating a
// calculation. Results are always recomputed from the values.
type calculationPayload = storage.SavedCalculation

func (h *handler) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	calcs, err := h.store.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "server.handleListCalculations")
		return
	}
	h.writeJSON(w, http.StatusOK, calcs)
}

func (h *handler) handleCreateCalculation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateCalculation"

	var req calculationPayload
	if !h.decode(w, r, &req, op) {
		return
	}
	calc, err := h.evaluateSaved(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	calc.ID = ""
	calc.Date = time.Time{}

	saved, err := h.store.Save(r.Context(), calc)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.logger.Info("saved calculation",
		zap.String("op", op),
		zap.String("id", saved.ID),
		zap.String("name", saved.Name),
	)
	h.writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) handleGetCalculation(w http.ResponseWriter, r *http.Request) {
	calc, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, err, "server.handleGetCalculation")
		return
	}
	h.writeJSON(w, http.StatusOK, calc)
}

func (h *handler) handleUpdateCalculation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateCalculation"
	id := chi.URLParam(r, "id")

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	var req calculationPayload
	if !h.decode(w, r, &req, op) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = existing.Name
	}
	calc, err := h.evaluateSaved(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	calc.ID = existing.ID
	calc.Date = existing.Date

	if err := h.store.Update(r.Context(), calc); err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, calc)
}

func (h *handler) handleDeleteCalculation(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, err, "server.handleDeleteCalculation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleExportCalculation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportCalculation"

	calc, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	contentType := "application/json"
	fileName := export.FileName(calc.Name)
	var data []byte
	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		contentType = "application/yaml"
		fileName = strings.TrimSuffix(fileName, ".json") + ".yaml"
		data, err = export.ExportYAML(calc)
	} else {
		data, err = export.Export(calc)
	}
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export", zap.String("op", op), zap.Error(err))
	}
}

// handleImport stores an exported calculation as a new entry. The imported
// results are kept as they were exported.
func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImport"

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		h.respondBodyError(w, err, op)
		return
	}

	calc, err := export.Import(data)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	if strings.TrimSpace(calc.Name) == "" {
		calc.Name = datetime.ImportedName(h.now())
	}
	calc.ID = ""
	calc.Date = time.Time{}

	saved, err := h.store.Save(r.Context(), calc)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) evaluateSaved(ctx context.Context, req calculationPayload) (storage.SavedCalculation, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return storage.SavedCalculation{}, fmt.Errorf("%w: name is required", validation.ErrInvalidInput)
	}
	results, err := h.calc.Evaluate(ctx, req.Values)
	if err != nil {
		return storage.SavedCalculation{}, err
	}
	req.Results = results
	return req, nil
}

func defaultInvestment() calculator.InvestmentAssumptions {
	return calculator.InvestmentAssumptions{
		ExpectedReturn: constants.DefaultExpectedReturn,
		AccountType:    constants.AccountTypeISK,
	}
}

// decode reads a size-limited JSON body into dst and reports whether the
// handler should continue.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err := dec.Decode(dst); err != nil {
		h.respondBodyError(w, err, op)
		return false
	}
	return true
}

func (h *handler) respondBodyError(w http.ResponseWriter, err error, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds limit of %d bytes", h.maxUploadSize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
}

func (h *handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, validation.ErrInvalidInput), errors.Is(err, export.ErrMalformedImport):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	case errors.Is(err, storage.ErrNotFound):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	case errors.Is(err, storage.ErrConflict):
		h.respondErrorWithOp(w, http.StatusConflict, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	log := h.logger.Warn
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before the status is sent so an encoding
// failure still reaches the client as a 500.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Int("status", status),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}
