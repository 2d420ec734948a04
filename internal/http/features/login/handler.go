package login

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/openfleet/fleettenant/internal/httputil"
	"github.com/openfleet/fleettenant/pkg/auth"
)

// Handler handles the authentication endpoint.
type Handler struct {
	logger *slog.Logger
	router *auth.Router
	tokens *auth.TokenIssuer
}

// NewHandler creates a new login handler.
func NewHandler(logger *slog.Logger, router *auth.Router, tokens *auth.TokenIssuer) *Handler {
	return &Handler{logger: logger, router: router, tokens: tokens}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	PrincipalID string `json:"principal_id"`
	Secret      string `json:"secret"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	TenantID    string `json:"tenant_id"`
	PrincipalID string `json:"principal_id"`
	Role        string `json:"role"`
}

// Login handles principal authentication.
// POST /v1/auth/login
//
// Every authentication failure produces the same 401 response body, whatever
// the underlying reason; distinguishing them would leak information across
// tenants.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PrincipalID == "" || req.Secret == "" {
		httputil.Error(w, http.StatusBadRequest, "principal_id and secret are required")
		return
	}

	session, err := h.router.Authenticate(r.Context(), req.PrincipalID, req.Secret)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	token, err := h.tokens.Issue(session)
	if err != nil {
		h.logger.Error("failed to issue session token", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue session token")
		return
	}

	h.logger.Info("principal authenticated",
		"principal_id", session.PrincipalID,
		"tenant_id", session.TenantID,
	)
	httputil.JSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokens.TTL().Seconds()),
		TenantID:    session.TenantID,
		PrincipalID: session.PrincipalID,
		Role:        string(session.Role),
	})
}
