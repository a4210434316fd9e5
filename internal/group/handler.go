package group

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsmart/internal/user"
	"github.com/fkhayef/splitsmart/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	// Member management
	r.Post("/{id}/members", h.AddMember)

	// Ledger views
	r.Get("/{id}/debts", h.Debts)
	r.Get("/{id}/summary", h.Summary)
	r.Get("/{id}/balances", h.Balances)

	return r
}

// writeError maps service errors onto the response envelope
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidGroup), errors.Is(err, user.ErrUserNotFound):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrGroupNameTaken), errors.Is(err, ErrMemberAlreadyExists):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a group with a unique name. Every member must be a registered user.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Description  Get a group with all its members
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	group, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to get group")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// List handles GET /groups
// @Summary      List groups
// @Description  Get a paginated list of groups ordered by name
// @Tags         groups
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := response.PageParams(r)

	groups, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	resp := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = g.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, resp, response.Pagination(page, perPage, total))
}

// AddMember handles POST /groups/{id}/members
// @Summary      Add member to group
// @Description  Append a registered user to the group's member list
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body AddMemberRequest true "Member to add"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.AddMember(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, err, "Failed to add member")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// Debts handles GET /groups/{id}/debts
// @Summary      List outstanding debts
// @Description  The group's collapsed set of directed debts, sorted by debtor then creditor
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]DebtResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/debts [get]
func (h *Handler) Debts(w http.ResponseWriter, r *http.Request) {
	_, l, err := h.service.Ledger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to get debts")
		return
	}

	response.JSON(w, http.StatusOK, DebtsToResponse(l.Debts()))
}

// Summary handles GET /groups/{id}/summary
// @Summary      Summarize debts
// @Description  One "X owes Y amount" line per debt
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to summarize debts")
		return
	}

	response.JSON(w, http.StatusOK, &SummaryResponse{Lines: lines})
}

// Balances handles GET /groups/{id}/balances
// @Summary      Net balances
// @Description  Each member's net position. Positive means the member is owed money.
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]BalanceResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/balances [get]
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.Balances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to get balances")
		return
	}

	response.JSON(w, http.StatusOK, balances)
}
