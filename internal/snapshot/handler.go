package snapshot

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/user"
	"github.com/fkhayef/splitsmart/pkg/response"
)

// Handler handles HTTP requests for save and load
type Handler struct {
	service     *Service
	defaultMode Mode
}

// NewHandler creates a new snapshot handler
func NewHandler(service *Service, defaultMode Mode) *Handler {
	return &Handler{service: service, defaultMode: defaultMode}
}

// Routes returns the router for snapshot endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Export)
	r.Post("/", h.Import)

	return r
}

// Export handles GET /snapshot
// @Summary      Save
// @Description  The whole store as a snapshot document. The body is the bare document, not wrapped, so it can be posted back.
// @Tags         snapshot
// @Produce      json
// @Success      200 {object} Document
// @Router       /snapshot [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Export(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to export snapshot")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	doc.Encode(w)
}

// Import handles POST /snapshot
// @Summary      Load
// @Description  Import a snapshot document. mode=debts loads stored debts and collapses once; mode=replay re-applies every expense.
// @Tags         snapshot
// @Accept       json
// @Produce      json
// @Param        mode query string false "Load mode" Enums(debts, replay)
// @Param        request body Document true "Snapshot document"
// @Success      201 {object} response.APIResponse{data=ImportResult}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /snapshot [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	mode := h.defaultMode
	if q := r.URL.Query().Get("mode"); q != "" {
		parsed, err := ParseMode(q)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		mode = parsed
	}

	doc, err := Decode(r.Body)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Import(r.Context(), doc, mode)
	if err != nil {
		switch {
		case errors.Is(err, group.ErrGroupNameTaken):
			response.Conflict(w, err.Error())
		case errors.Is(err, ErrInvalidSnapshot),
			errors.Is(err, split.ErrInvalidSplit),
			errors.Is(err, ledger.ErrInconsistent),
			errors.Is(err, group.ErrNotMember),
			errors.Is(err, group.ErrInvalidGroup),
			errors.Is(err, user.ErrInvalidUser),
			errors.Is(err, user.ErrUserNotFound):
			response.UnprocessableEntity(w, err.Error())
		default:
			response.InternalError(w, "Failed to import snapshot")
		}
		return
	}

	response.JSON(w, http.StatusCreated, result)
}
