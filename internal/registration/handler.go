package registration

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
	CreateRegistration(ctx context.Context, dto CreateRegistrationDTO) (*Registration, error)
	GetRegistration(id int64) (*Registration, error)
	ListRegistrations(status string, limit, offset int) ([]Registration, int64, error)
	GetProgress(id int64) (*Progress, error)
	CompleteStep(ctx context.Context, id int64, step int) (*Progress, error)
	UpdateStatus(ctx context.Context, id int64, dto UpdateStatusDTO) (*Registration, error)
	UpdatePoliceVerification(ctx context.Context, id int64, dto UpdatePoliceVerificationDTO) (*Registration, error)
	UpdateSalaryStatus(ctx context.Context, id int64, dto UpdateSalaryStatusDTO) (*Registration, error)
	FinalizeRegistration(ctx context.Context, id int64, dto FinalizeRegistrationDTO) (*Registration, error)
	GetStatusHistory(id int64) ([]StatusChange, error)
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

func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var dto CreateRegistrationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRegistration: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateRegistration(r.Context(), dto)
	if err != nil {
		h.Logger.Error("CreateRegistration: service error", "error", err, "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid registration ID")
		return
	}

	reg, err := h.Service.GetRegistration(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	regs, total, err := h.Service.ListRegistrations(status, limit, offset)
	if err != nil {
		h.Logger.Error("ListRegistrations: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"registrations": regs,
		"total":         total,
	})
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid registration ID")
		return
	}

	progress, err := h.Service.GetProgress(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid registration ID")
		return
	}

	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid step number")
		return
	}

	progress, err := h.Service.CompleteStep(r.Context(), id, step)
	if err != nil {
		h.Logger.Error("CompleteStep: service error", "error", err, "registration_id", id, "step", step)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid registration ID")
		return
	}

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateStatus(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("UpdateStatus: service error", "error", err, "registration_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) UpdatePoliceVerification(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid registration ID")
		return
	}

	var dto UpdatePoliceVerificationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdatePoliceVerification(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("UpdatePoliceVerification: service error", "error", err, "registration_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) UpdateSalaryStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid registration ID")
		return
	}

	var dto UpdateSalaryStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateSalaryStatus(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("UpdateSalaryStatus: service error", "error", err, "registration_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) FinalizeRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid registration ID")
		return
	}

	var dto FinalizeRegistrationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	finalized, err := h.Service.FinalizeRegistration(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("FinalizeRegistration: service error", "error", err, "registration_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, finalized)
}

func (h *Handler) GetStatusHistory(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid registration ID")
		return
	}

	history, err := h.Service.GetStatusHistory(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (h *Handler) urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
