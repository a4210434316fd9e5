package expense

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Post("/preview", h.Preview)
	r.Get("/{id}", h.GetByID)

	// Group-based listing
	r.Get("/group/{groupId}", h.ListByGroup)

	return r
}

// writeError maps service errors onto the response envelope
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, split.ErrInvalidSplit), errors.Is(err, group.ErrNotMember):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, group.ErrGroupNotFound), errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /expenses
// @Summary      Record an expense
// @Description  Split an expense with the equal, amounts, percent or shares policy and fold it into the group's debts.
// @Description  Leave participants empty to split among all members.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=CreateExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, l, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, &CreateExpenseResponse{
		Expense: expense.ToResponse(),
		Debts:   group.DebtsToResponse(l.Debts()),
	})
}

// Preview handles POST /expenses/preview
// @Summary      Preview shares
// @Description  Compute per-participant shares without recording anything
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body PreviewRequest true "Split to compute"
// @Success      200 {object} response.APIResponse{data=[]ShareResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	shares, err := h.service.Preview(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to compute shares")
		return
	}

	response.JSON(w, http.StatusOK, SharesToResponse(shares))
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with its computed shares
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	expense, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, expense.ToResponse())
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List expenses by group
// @Description  Get a paginated list of a group's expenses in recording order
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	page, perPage := response.PageParams(r)

	expenses, total, err := h.service.ListByGroupID(r.Context(), chi.URLParam(r, "groupId"), page, perPage)
	if err != nil {
		writeError(w, err, "Failed to list expenses")
		return
	}

	resp := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = e.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, resp, response.Pagination(page, perPage, total))
}
