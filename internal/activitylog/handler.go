package activitylog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/servicehub/admin-backend/internal/transport"
	"github.com/servicehub/admin-backend/pkg/logger"
)

const defaultTrailLimit = 50

type Handler struct {
	*transport.BaseHandler
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		repo:        repo,
	}
}

// ListEntityActivity returns the audit trail for one entity, newest capped
// by the limit query parameter.
func (h *Handler) ListEntityActivity(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	entityID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entity ID")
		return
	}

	limit := defaultTrailLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	logs, err := h.repo.ListByEntity(entity, entityID, limit)
	if err != nil {
		h.Logger.Error("ListEntityActivity: repository error", "error", err, "entity", entity, "entity_id", entityID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"activity": logs})
}
