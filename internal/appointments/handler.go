package appointments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fertilitycare/patient-portal/internal/apperr"
	"github.com/fertilitycare/patient-portal/internal/session"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

// Handler exposes the appointment endpoints. Routes expect a session
// identity in the request context.
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

// Routes mounts under /api/v1/appointments.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{bookingID}", h.Detail)
	r.Post("/{bookingID}/cancel", h.Cancel)
	return r
}

// List handles GET /api/v1/appointments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthenticated())
		return
	}
	views, err := h.service.List(r.Context(), id)
	if err != nil {
		h.fail(w, r, "list appointments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": views})
}

// Detail handles GET /api/v1/appointments/{bookingID}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthenticated())
		return
	}
	view, err := h.service.Detail(r.Context(), id, chi.URLParam(r, "bookingID"))
	if err != nil {
		h.fail(w, r, "get appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Cancel handles POST /api/v1/appointments/{bookingID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthenticated())
		return
	}
	result, err := h.service.Cancel(r.Context(), id, chi.URLParam(r, "bookingID"))
	if err != nil {
		h.fail(w, r, "cancel appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindPolicyViolation || kind == apperr.KindNotFound || kind == apperr.KindInvalid {
		h.logger.Info(op+" rejected", "kind", kind, "path", r.URL.Path)
	} else {
		h.logger.Error(op+" failed", "kind", kind, "path", r.URL.Path, "error", err)
	}
	apperr.Write(w, err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
