package module

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/servicehub/admin-backend/internal/transport"
	"github.com/servicehub/admin-backend/pkg/logger"
)

type ServiceAPI interface {
	ListModules() ([]Module, error)
	GetChildren(parentID int64) ([]Module, error)
	CreateModule(ctx context.Context, dto CreateModuleDTO) (*Module, error)
	ReparentModule(ctx context.Context, moduleID int64, newParentID *int64) (*Module, error)
	DeleteModule(ctx context.Context, moduleID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.Service.ListModules()
	if err != nil {
		h.Logger.Error("ListModules: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"modules": modules})
}

func (h *Handler) GetChildren(w http.ResponseWriter, r *http.Request) {
	parentID, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid module ID")
		return
	}

	children, err := h.Service.GetChildren(parentID)
	if err != nil {
		h.Logger.Error("GetChildren: service error", "error", err, "parent_id", parentID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"modules": children})
}

func (h *Handler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var dto CreateModuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateModule: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateModule(r.Context(), dto)
	if err != nil {
		h.Logger.Error("CreateModule: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateModule: module created", "module_id", created.ID, "name", created.Name)

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ReparentModule(w http.ResponseWriter, r *http.Request) {
	moduleID, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid module ID")
		return
	}

	var dto ReparentModuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReparentModule: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.ReparentModule(r.Context(), moduleID, dto.ParentID)
	if err != nil {
		h.Logger.Error("ReparentModule: service error", "error", err, "module_id", moduleID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	moduleID, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid module ID")
		return
	}

	if err := h.Service.DeleteModule(r.Context(), moduleID); err != nil {
		h.Logger.Error("DeleteModule: service error", "error", err, "module_id", moduleID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

func (h *Handler) urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
