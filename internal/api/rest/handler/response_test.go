package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestWriteErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Barcode is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":false,"error":"VALIDATION_ERROR","message":"Barcode is required"}`, w.Body.String())
}

func TestWriteDomainError(t *testing.T) {
	testCases := map[string]struct {
		err            error
		expectedStatus int
		expectedBody   string
	}{
		"should map invalid credentials to 401": {
			err:            domain.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"ok":false,"error":"INVALID_CREDENTIALS"}`,
		},
		"should map an archived account to 403": {
			err:            domain.ErrArchived,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"ok":false,"error":"ARCHIVED"}`,
		},
		"should map a missing picking to 404": {
			err:            domain.ErrPickingNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"ok":false,"error":"PICKING_NOT_FOUND"}`,
		},
		"should map a scan conflict to 409": {
			err:            domain.ErrWrongOrder,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"ok":false,"error":"WRONG_ORDER"}`,
		},
		"should carry the diffs of a finalize mismatch": {
			err: &domain.MismatchError{Diffs: []domain.LineDiff{
				{LineID: 1, ProductID: 100, NewRequired: 3},
			}},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"ok":false,"error":"MISMATCH","diffs":[{"line_id":1,"product_id":100,"new_required":3}]}`,
		},
		"should hide unexpected errors behind a 500": {
			err:            errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"ok":false,"error":"INTERNAL_ERROR","message":"An internal error occurred while processing your request"}`,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeDomainError(w, slog.New(slog.NewTextHandler(io.Discard, nil)), tc.err)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}
