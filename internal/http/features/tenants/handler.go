package tenants

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/openfleet/fleettenant/internal/httputil"
	"github.com/openfleet/fleettenant/pkg/auth"
	"github.com/openfleet/fleettenant/pkg/domain"
)

// Handler handles tenant provisioning and management endpoints.
type Handler struct {
	logger      *slog.Logger
	provisioner *auth.Provisioner
}

// NewHandler creates a new tenants handler.
func NewHandler(logger *slog.Logger, provisioner *auth.Provisioner) *Handler {
	return &Handler{logger: logger, provisioner: provisioner}
}

// RegisterRequest represents a tenant registration request.
type RegisterRequest struct {
	DisplayName string       `json:"display_name"`
	OwnerName   string       `json:"owner_name"`
	OwnerSecret string       `json:"owner_secret"`
	Contact     auth.Contact `json:"contact"`
}

// RegisterResponse represents a tenant registration response.
type RegisterResponse struct {
	TenantID         string `json:"tenant_id"`
	OwnerPrincipalID string `json:"owner_principal_id"`
}

// TenantResponse represents one tenant in a listing.
type TenantResponse struct {
	TenantID    string    `json:"tenant_id"`
	DisplayName string    `json:"display_name"`
	OwnerName   string    `json:"owner_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// EmployeeResponse represents a newly enrolled employee.
type EmployeeResponse struct {
	PrincipalID string `json:"principal_id"`
}

// Register handles tenant registration.
// POST /v1/tenants
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DisplayName == "" || req.OwnerName == "" || req.OwnerSecret == "" {
		httputil.Error(w, http.StatusBadRequest, "display_name, owner_name and owner_secret are required")
		return
	}

	result, err := h.provisioner.RegisterTenant(r.Context(), req.DisplayName, req.OwnerName, req.OwnerSecret, req.Contact)
	if err != nil {
		// Provisioning detail is not security-sensitive; report it.
		h.logger.Error("tenant registration failed", "display_name", req.DisplayName, "error", err)
		httputil.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.logger.Info("tenant registered",
		"tenant_id", result.Tenant.ID,
		"owner_principal_id", result.OwnerPrincipalID,
	)
	httputil.JSON(w, http.StatusCreated, RegisterResponse{
		TenantID:         result.Tenant.ID,
		OwnerPrincipalID: result.OwnerPrincipalID,
	})
}

// List handles tenant listing.
// GET /v1/tenants
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.provisioner.ListTenants(r.Context())
	if err != nil {
		h.logger.Error("tenant listing failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	resp := make([]TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		resp = append(resp, TenantResponse{
			TenantID:    t.ID,
			DisplayName: t.DisplayName,
			OwnerName:   t.OwnerName,
			CreatedAt:   t.CreatedAt,
		})
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Delete handles tenant deletion.
// DELETE /v1/tenants/{tenantRef}
//
// Deletion takes a tenant id only, never a display name.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantRef")

	if err := h.provisioner.DeleteTenant(r.Context(), tenantID); err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			httputil.Error(w, http.StatusNotFound, "tenant not found")
			return
		}
		h.logger.Error("tenant deletion failed", "tenant_id", tenantID, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete tenant")
		return
	}

	h.logger.Info("tenant deleted", "tenant_id", tenantID)
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles tenant statistics.
// GET /v1/tenants/{tenantRef}/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantRef")

	stats, err := h.provisioner.TenantStats(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			httputil.Error(w, http.StatusNotFound, "tenant not found")
			return
		}
		h.logger.Error("tenant stats failed", "tenant_id", tenantID, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to read tenant stats")
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// AddEmployee handles employee enrollment.
// POST /v1/tenants/{tenantRef}/employees
//
// tenantRef may be a tenant id or an exact display name.
func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	tenantRef := chi.URLParam(r, "tenantRef")
	if unescaped, err := url.PathUnescape(tenantRef); err == nil {
		tenantRef = unescaped
	}

	var data domain.EmployeeData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal, err := h.provisioner.AddEmployee(r.Context(), tenantRef, data)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			httputil.Error(w, http.StatusNotFound, "tenant not found")
			return
		}
		if errors.Is(err, domain.ErrProvisioningFailed) {
			httputil.Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("employee enrollment failed", "tenant_ref", tenantRef, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to add employee")
		return
	}

	h.logger.Info("employee enrolled", "principal_id", principal.ID)
	httputil.JSON(w, http.StatusCreated, EmployeeResponse{PrincipalID: principal.ID})
}
