package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/flfwms/picking-api/internal/api/rest/middleware"
	"github.com/flfwms/picking-api/internal/domain"
	"github.com/flfwms/picking-api/internal/picking"
	"github.com/go-chi/chi/v5"
)

// PickingService defines the scan validation operations used by the task
// handler.
type PickingService interface {
	AttachByBarcode(ctx context.Context, barcode, lang string) (*picking.AttachResult, error)
	Scan(ctx context.Context, in picking.ScanInput) (*picking.ScanResult, error)
	Finalize(ctx context.Context, orderID int, items []picking.FinalizeItem) (*picking.FinalizeResult, error)
	ResetProgress(ctx context.Context, orderID int) error
	ListAvailable(ctx context.Context) ([]picking.TaskSummary, error)
	Details(ctx context.Context, orderID int, lang string) (*picking.TaskDetails, error)
}

// TaskHandler handles the pick/scan endpoints.
type TaskHandler struct {
	service PickingService
	logger  *slog.Logger
}

// NewTaskHandler creates a new TaskHandler instance.
func NewTaskHandler(service PickingService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger,
	}
}

// AttachRequest is the payload of POST /task/attach.
type AttachRequest struct {
	PickingBarcode string `json:"picking_barcode"`
}

// AttachResponse wraps the attach result.
type AttachResponse struct {
	OK bool `json:"ok"`
	*picking.AttachResult
}

// Attach handles POST /task/attach.
func (h *TaskHandler) Attach(w http.ResponseWriter, r *http.Request) {
	var req AttachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.PickingBarcode == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Picking barcode is required")
		return
	}

	result, err := h.service.AttachByBarcode(r.Context(), req.PickingBarcode, h.language(r))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, AttachResponse{OK: true, AttachResult: result})
}

// ScanRequest is the payload of POST /scan/item.
type ScanRequest struct {
	PickingID         int    `json:"picking_id"`
	Barcode           string `json:"barcode"`
	ExpectedProductID int    `json:"expected_product_id,omitempty"`
}

// ScanResponse wraps the scan result.
type ScanResponse struct {
	OK bool `json:"ok"`
	*picking.ScanResult
}

// ScanItem handles POST /scan/item.
func (h *TaskHandler) ScanItem(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.PickingID <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Picking ID is required")
		return
	}
	if req.Barcode == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Barcode is required")
		return
	}

	result, err := h.service.Scan(r.Context(), picking.ScanInput{
		OrderID:           req.PickingID,
		Code:              req.Barcode,
		ExpectedProductID: req.ExpectedProductID,
		Language:          h.language(r),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, ScanResponse{OK: true, ScanResult: result})
}

// ValidateRequest is the payload of POST /validate.
type ValidateRequest struct {
	PickingID int                    `json:"picking_id"`
	Payload   []picking.FinalizeItem `json:"payload"`
}

// ValidateResponse wraps the finalize result.
type ValidateResponse struct {
	OK bool `json:"ok"`
	*picking.FinalizeResult
}

// Validate handles POST /validate.
func (h *TaskHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.PickingID <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Picking ID is required")
		return
	}
	if req.Payload == nil {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Payload must be an array")
		return
	}
	for _, item := range req.Payload {
		if item.LineID <= 0 || item.ProductID <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Line ID and product ID are required")
			return
		}
	}

	result, err := h.service.Finalize(r.Context(), req.PickingID, req.Payload)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, ValidateResponse{OK: true, FinalizeResult: result})
}

// CancelRequest is the payload of POST /cancel_local.
type CancelRequest struct {
	PickingID int `json:"picking_id"`
}

// CancelLocal handles POST /cancel_local: resets all line quantities to
// zero so the device can restart the pick.
func (h *TaskHandler) CancelLocal(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.PickingID <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "PICKING_ID_REQUIRED", "Picking ID is required")
		return
	}

	if err := h.service.ResetProgress(r.Context(), req.PickingID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Picking progress reset successfully",
	})
}

// AvailableTasksResponse is the payload of GET /tasks/available.
type AvailableTasksResponse struct {
	OK       bool                  `json:"ok"`
	Pickings []picking.TaskSummary `json:"pickings"`
}

// AvailableTasks handles GET /tasks/available.
func (h *TaskHandler) AvailableTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListAvailable(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, AvailableTasksResponse{OK: true, Pickings: tasks})
}

// TaskDetailsResponse wraps the task detail view.
type TaskDetailsResponse struct {
	OK bool `json:"ok"`
	*picking.TaskDetails
}

// TaskDetails handles GET /task/{pickingId}.
func (h *TaskHandler) TaskDetails(w http.ResponseWriter, r *http.Request) {
	pickingID, err := strconv.Atoi(chi.URLParam(r, "pickingId"))
	if err != nil || pickingID <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Picking ID must be a number")
		return
	}

	details, err := h.service.Details(r.Context(), pickingID, h.language(r))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, TaskDetailsResponse{OK: true, TaskDetails: details})
}

// language resolves the worker's language from the session, defaulting
// when the route is reachable without one.
func (h *TaskHandler) language(r *http.Request) string {
	if session, ok := middleware.SessionFromContext(r.Context()); ok && session.Language != "" {
		return session.Language
	}
	return domain.DefaultLanguage
}
