package permission

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/servicehub/admin-backend/internal"
	"github.com/servicehub/admin-backend/internal/transport"
	"github.com/servicehub/admin-backend/pkg/logger"
)

type ServiceAPI interface {
	SetRolePermissions(ctx context.Context, roleID int64, grants []ModuleGrantDTO) error
	SetUserPermissionOverride(ctx context.Context, userID, moduleID int64, grants Grants) error
	GetRolePermissions(roleID int64) ([]ModulePermission, error)
	GetUserPermissions(userID int64) ([]ModulePermission, error)
}

type ResolverAPI interface {
	Resolve(identity *internal.Identity, moduleName string, capabilityName string) (bool, error)
	ResolveAll(identity *internal.Identity) ([]ModulePermission, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Resolver ResolverAPI
}

func NewHandler(service ServiceAPI, resolver ResolverAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Resolver:    resolver,
	}
}

// SetRolePermissions replaces the full grant set for a role.
func (h *Handler) SetRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	var dto SetRolePermissionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetRolePermissions: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.Grants == nil {
		h.WriteError(w, http.StatusBadRequest, "grants must be an array")
		return
	}

	if err := h.Service.SetRolePermissions(r.Context(), roleID, dto.Grants); err != nil {
		h.Logger.Error("SetRolePermissions: service error", "error", err, "role_id", roleID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

func (h *Handler) GetRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return
	}

	permissions, err := h.Service.GetRolePermissions(roleID)
	if err != nil {
		h.Logger.Error("GetRolePermissions: service error", "error", err, "role_id", roleID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permissions": permissions})
}

// SetUserOverride upserts one per-user override; an all-false payload removes
// the override and returns the user to the role default.
func (h *Handler) SetUserOverride(w http.ResponseWriter, r *http.Request) {
	userID, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto SetUserOverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetUserOverride: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if appErr := dto.Validate(); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	if err := h.Service.SetUserPermissionOverride(r.Context(), userID, dto.ModuleID, dto.Grants()); err != nil {
		h.Logger.Error("SetUserOverride: service error", "error", err, "user_id", userID, "module_id", dto.ModuleID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

func (h *Handler) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	userID, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	permissions, err := h.Service.GetUserPermissions(userID)
	if err != nil {
		h.Logger.Error("GetUserPermissions: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"permissions": permissions})
}

// Check resolves a single capability for the calling identity.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dto := CheckDTO{
		Module:     r.URL.Query().Get("module"),
		Capability: r.URL.Query().Get("capability"),
	}
	if appErr := dto.Validate(); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	granted, err := h.Resolver.Resolve(identity, dto.Module, dto.Capability)
	if err != nil {
		h.Logger.Error("Check: resolver error", "error", err, "module", dto.Module, "capability", dto.Capability)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"module":     dto.Module,
		"capability": dto.Capability,
		"granted":    granted,
	})
}

// Matrix returns the caller's full permission matrix, one entry per module.
func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	matrix, err := h.Resolver.ResolveAll(identity)
	if err != nil {
		h.Logger.Error("Matrix: resolver error", "error", err, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"matrix": matrix})
}

func (h *Handler) urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
