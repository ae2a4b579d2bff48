package booking

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
	CreateBooking(ctx context.Context, dto CreateBookingDTO) (*Booking, error)
	GetBooking(id int64) (*Booking, error)
	GetBookingByReference(reference string) (*Booking, error)
	ListBookings(status string, limit, offset int) ([]Booking, int64, error)
	UpdateBookingStatus(ctx context.Context, id int64, dto UpdateBookingStatusDTO) (*Booking, error)
	RecordPayment(ctx context.Context, id int64, dto RecordPaymentDTO) (*Booking, error)
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

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var dto CreateBookingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateBooking: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateBooking(r.Context(), dto)
	if err != nil {
		h.Logger.Error("CreateBooking: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	b, err := h.Service.GetBooking(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) GetBookingByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		h.WriteError(w, http.StatusBadRequest, "missing booking reference")
		return
	}

	b, err := h.Service.GetBookingByReference(reference)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	bookings, total, err := h.Service.ListBookings(status, limit, offset)
	if err != nil {
		h.Logger.Error("ListBookings: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"total":    total,
	})
}

func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	var dto UpdateBookingStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateBookingStatus(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("UpdateBookingStatus: service error", "error", err, "booking_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := h.urlParamInt64(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	var dto RecordPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.RecordPayment(r.Context(), id, dto)
	if err != nil {
		h.Logger.Error("RecordPayment: service error", "error", err, "booking_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
