// Package handler provides the HTTP handlers of the picking API. Handlers
// validate request shape, delegate to the services and map business errors
// to status codes.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/flfwms/picking-api/internal/api/rest/middleware"
	"github.com/flfwms/picking-api/internal/domain"
	"github.com/google/uuid"
)

// Authenticator defines the credential verification operations used by
// the auth handler.
type Authenticator interface {
	PasswordLogin(ctx context.Context, login, password string) (*domain.User, error)
	BadgeLogin(ctx context.Context, badge, pin string) (*domain.User, error)
}

// TokenIssuer mints bearer tokens binding a worker to a device.
type TokenIssuer interface {
	Issue(user *domain.User, deviceID string) (string, error)
}

// AuthHandler handles login, logout and device status requests.
type AuthHandler struct {
	auth   Authenticator
	tokens TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(auth Authenticator, tokens TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		tokens: tokens,
		logger: logger,
	}
}

// LoginRequest is the password mode login payload.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	DeviceID string `json:"device_id,omitempty"`
}

// BadgeLoginRequest is the badge+PIN mode login payload.
type BadgeLoginRequest struct {
	BadgeBarcode string `json:"badge_barcode"`
	PIN          string `json:"pin"`
	DeviceID     string `json:"device_id,omitempty"`
}

// LoginResponse is returned by both login modes.
type LoginResponse struct {
	OK       bool         `json:"ok"`
	Token    string       `json:"token"`
	User     *domain.User `json:"user"`
	DeviceID string       `json:"device_id"`
}

// Login handles POST /login in password mode.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.Login == "" || req.Password == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Login and password are required")
		return
	}

	user, err := h.auth.PasswordLogin(r.Context(), req.Login, req.Password)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.issueSession(w, user, req.DeviceID)
}

// LoginBadge handles POST /login_badge in badge+PIN mode.
func (h *AuthHandler) LoginBadge(w http.ResponseWriter, r *http.Request) {
	var req BadgeLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if req.BadgeBarcode == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "Badge barcode is required")
		return
	}
	if !validPIN(req.PIN) {
		WriteErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "PIN must be between 4 and 6 digits")
		return
	}

	user, err := h.auth.BadgeLogin(r.Context(), req.BadgeBarcode, req.PIN)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.issueSession(w, user, req.DeviceID)
}

// issueSession mints the token, generating a device id when the client
// did not supply one.
func (h *AuthHandler) issueSession(w http.ResponseWriter, user *domain.User, deviceID string) {
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	token, err := h.tokens.Issue(user, deviceID)
	if err != nil {
		h.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed")
		return
	}

	WriteJSONResponse(w, http.StatusOK, LoginResponse{
		OK:       true,
		Token:    token,
		User:     user,
		DeviceID: deviceID,
	})
}

// DeviceStatusResponse is the payload of GET /device/status.
type DeviceStatusResponse struct {
	OK       bool       `json:"ok"`
	DeviceID string     `json:"device_id"`
	User     DeviceUser `json:"user"`
	Active   bool       `json:"active"`
}

// DeviceUser is the identity snapshot carried by the token.
type DeviceUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DeviceStatus handles GET /device/status.
func (h *AuthHandler) DeviceStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.logger.Error("session not found in context")
		WriteErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	WriteJSONResponse(w, http.StatusOK, DeviceStatusResponse{
		OK:       true,
		DeviceID: session.DeviceID,
		User:     DeviceUser{ID: session.UserID, Name: session.Name},
		Active:   true,
	})
}

// Logout handles POST /logout. Tokens are stateless; the client discards
// its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]any{"ok": true})
}

// validPIN enforces the 4 to 6 digit PIN shape.
func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
