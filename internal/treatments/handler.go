package treatments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/session"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

// Handler serves GET /api/v1/treatments.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List handles GET /api/v1/treatments?status=&q=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthenticated())
		return
	}
	f, err := ParseFilter(r.URL.Query().Get("status"), r.URL.Query().Get("q"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	list, err := h.service.List(r.Context(), id, f)
	if err != nil {
		h.logger.Error("list treatments failed", "user_id", id.UserID, "kind", apperr.KindOf(err), "error", err)
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		h.logger.Error("failed to encode treatments", "user_id", id.UserID, "error", err)
	}
}
