package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/skedplan/intake/internal/config"
	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/ingest"
	"github.com/skedplan/intake/internal/metrics"
	"github.com/skedplan/intake/internal/rules"
	"github.com/skedplan/intake/internal/schema"
	"github.com/skedplan/intake/internal/store"
	"github.com/skedplan/intake/internal/validation"
)

// Handler contains all HTTP handlers
type Handler struct {
	datasets *store.Store
	rules    *rules.Store
	reader   *ingest.Reader
	metrics  *metrics.Collector
	config   config.Config
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a new HTTP handler
func NewHandler(
	datasets *store.Store,
	ruleStore *rules.Store,
	reader *ingest.Reader,
	collector *metrics.Collector,
	cfg config.Config,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		datasets: datasets,
		rules:    ruleStore,
		reader:   reader,
		metrics:  collector,
		config:   cfg,
		logger:   logger,
		validate: validator.New(),
	}
}

// RegisterRoutes configures HTTP routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/ready", h.ReadinessCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	datasets := api.PathPrefix("/datasets").Subrouter()
	datasets.HandleFunc("/{kind}", h.UploadDataset).Methods("POST")
	datasets.HandleFunc("/{kind}/report", h.GetReport).Methods("GET")
	datasets.HandleFunc("/{kind}/headers", h.MapHeaders).Methods("POST")
	datasets.HandleFunc("/{kind}/rows/{index}", h.UpdateRow).Methods("PATCH")

	api.HandleFunc("/validation/run", h.RunCrossValidation).Methods("POST")

	ruleAPI := api.PathPrefix("/rules").Subrouter()
	ruleAPI.HandleFunc("", h.ListRules).Methods("GET")
	ruleAPI.HandleFunc("", h.CreateRule).Methods("POST")
	ruleAPI.HandleFunc("/export", h.ExportRules).Methods("GET")
	ruleAPI.HandleFunc("/suggestions", h.SuggestRules).Methods("GET")
	ruleAPI.HandleFunc("/{ruleId}", h.GetRule).Methods("GET")
	ruleAPI.HandleFunc("/{ruleId}", h.UpdateRule).Methods("PUT")
	ruleAPI.HandleFunc("/{ruleId}", h.DeleteRule).Methods("DELETE")
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck reports readiness.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
	})
}

// UploadDataset ingests one collection upload, validates it and returns the
// report. An unreadable file never fails the request: it becomes a report
// with a single file-level error and zero data, per the error contract.
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	kind, err := entity.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	h.metrics.RecordUpload(string(kind))

	rows, err := h.readRows(w, r)
	if err != nil {
		h.metrics.RecordUploadError(string(kind))
		h.logger.Warn("Unreadable upload",
			zap.String("kind", string(kind)),
			zap.Error(err))
		h.respondJSON(w, http.StatusOK, unreadableReport(err))
		return
	}

	started := time.Now()
	switch kind {
	case entity.KindClient:
		result := h.datasets.UploadClients(rows)
		h.recordValidation(kind, result.Summary, len(result.Errors), started)
		h.respondJSON(w, http.StatusOK, result)
	case entity.KindWorker:
		result := h.datasets.UploadWorkers(rows)
		h.recordValidation(kind, result.Summary, len(result.Errors), started)
		h.respondJSON(w, http.StatusOK, result)
	case entity.KindTask:
		result := h.datasets.UploadTasks(rows)
		h.recordValidation(kind, result.Summary, len(result.Errors), started)
		h.respondJSON(w, http.StatusOK, result)
	}
}

// GetReport returns the current report for a collection, with cross-collection
// errors merged where they apply.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	kind, err := entity.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		h.respondError(w, http.StatusNotFound, err)
		return
	}

	switch kind {
	case entity.KindClient:
		h.respondJSON(w, http.StatusOK, h.datasets.ClientReport())
	case entity.KindWorker:
		h.respondJSON(w, http.StatusOK, h.datasets.WorkerReport())
	case entity.KindTask:
		h.respondJSON(w, http.StatusOK, h.datasets.TaskReport())
	}
}

type mapHeadersRequest struct {
	Headers []string `json:"headers" validate:"required,min=1"`
}

// MapHeaders resolves raw upload headers against the canonical schema of a
// collection kind, for manual mapping UIs.
func (h *Handler) MapHeaders(w http.ResponseWriter, r *http.Request) {
	kind, err := entity.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		h.respondError(w, http.StatusNotFound, err)
		return
	}

	var req mapHeadersRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"mappings": schema.MapHeaders(req.Headers, kind),
	})
}

// UpdateRow applies in-place field edits to one uploaded row and revalidates.
func (h *Handler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, err := entity.ParseKind(vars["kind"])
	if err != nil {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid row index %q", vars["index"]))
		return
	}

	var changes map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(changes) == 0 {
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("no field changes provided"))
		return
	}

	if err := h.datasets.UpdateRow(kind, index, changes); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	h.GetReport(w, r)
}

// RunCrossValidation re-runs the cross-collection passes and returns the
// merged task report. Idempotent by construction.
func (h *Handler) RunCrossValidation(w http.ResponseWriter, r *http.Request) {
	if !h.datasets.Complete() {
		h.respondError(w, http.StatusConflict, fmt.Errorf("all three collections must be uploaded first"))
		return
	}
	h.datasets.RunCrossChecks()
	h.respondJSON(w, http.StatusOK, h.datasets.TaskReport())
}

type ruleRequest struct {
	Type        string          `json:"type" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Priority    int             `json:"priority"`
	IsActive    *bool           `json:"isActive"`
	Parameters  json.RawMessage `json:"parameters" validate:"required"`
}

// CreateRule creates a new allocation rule.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.ruleFromRequest(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.rules.Create(*rule)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	h.metrics.RecordRuleOperation("create")
	h.metrics.SetActiveRules(len(h.rules.List()))
	h.respondJSON(w, http.StatusCreated, created)
}

// ListRules returns all rules in precedence order.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"rules": h.rules.List(),
	})
}

// GetRule returns a single rule.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := h.rules.Get(mux.Vars(r)["ruleId"])
	if !ok {
		h.respondError(w, http.StatusNotFound, fmt.Errorf("rule not found"))
		return
	}
	h.respondJSON(w, http.StatusOK, rule)
}

// UpdateRule updates a rule in place.
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.ruleFromRequest(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := h.rules.Update(mux.Vars(r)["ruleId"], *rule)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	h.metrics.RecordRuleOperation("update")
	h.respondJSON(w, http.StatusOK, updated)
}

// DeleteRule removes a rule.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.rules.Delete(mux.Vars(r)["ruleId"]); err != nil {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	h.metrics.RecordRuleOperation("delete")
	h.metrics.SetActiveRules(len(h.rules.List()))
	w.WriteHeader(http.StatusNoContent)
}

// ExportRules downloads the rule collection as a JSON document.
func (h *Handler) ExportRules(w http.ResponseWriter, r *http.Request) {
	data, err := h.rules.Export()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="rules.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// SuggestRules derives advisory rule candidates from the current collections.
func (h *Handler) SuggestRules(w http.ResponseWriter, r *http.Request) {
	clients, workers, tasks := h.datasets.Snapshot()
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": rules.Suggest(clients, workers, tasks),
	})
}

// readRows extracts raw rows from an upload request: a multipart CSV file
// under "file", or a JSON array of row objects.
func (h *Handler) readRows(w http.ResponseWriter, r *http.Request) ([]entity.RawRow, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Intake.MaxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var rows []entity.RawRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			return nil, fmt.Errorf("invalid JSON rows: %w", err)
		}
		return rows, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file upload: %w", err)
	}
	defer file.Close()
	return h.reader.ReadCSV(file)
}

func (h *Handler) ruleFromRequest(r *http.Request) (*rules.Rule, error) {
	var req ruleRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return nil, err
	}

	ruleType, err := rules.ParseType(req.Type)
	if err != nil {
		return nil, err
	}
	params, err := rules.DecodeParameters(ruleType, req.Parameters)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &rules.Rule{
		Type:        ruleType,
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		IsActive:    active,
		Parameters:  params,
	}, nil
}

func (h *Handler) decodeAndValidate(r *http.Request, into interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validate.Struct(into); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func (h *Handler) recordValidation(kind entity.Kind, summary validation.Summary, errCount int, started time.Time) {
	h.metrics.RecordValidation(string(kind), summary.TotalRows, summary.InvalidRows, errCount, time.Since(started).Seconds())
}

// unreadableReport converts an unrecoverable read failure into the standard
// report shape: one synthetic file-level error, zero data.
func unreadableReport(err error) validation.Result[entity.RawRow] {
	return validation.Result[entity.RawRow]{
		IsValid: false,
		Errors: []validation.ValidationError{{
			Row:     0,
			Field:   "file",
			Message: err.Error(),
		}},
		Data:      []entity.RawRow{},
		ValidData: []entity.RawRow{},
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, err error) {
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}
