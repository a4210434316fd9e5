package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsmart/internal/group"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service  *Service
	currency string
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service, currency string) *Handler {
	return &Handler{service: service, currency: currency}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/group/{groupId}/balances/{email}", h.GetNetBalances)

	return r
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ledger.ErrNonPositiveSettlement), errors.Is(err, group.ErrNotMember):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, group.ErrGroupNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /settlements
// @Summary      Settle up
// @Description  Record a payment from payer to receiver. The group's debts are collapsed afterwards.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body SettleUpRequest true "Payment"
// @Success      201 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /settlements [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req SettleUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	settlement, l, err := h.service.SettleUp(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to settle up")
		return
	}

	response.JSON(w, http.StatusCreated, settlement.ToResponse(group.DebtsToResponse(l.Debts())))
}

// GetNetBalances handles GET /settlements/group/{groupId}/balances/{email}
// @Summary      Get net balances for a member
// @Description  Who the member owes and who owes the member in a group
// @Tags         settlements
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        email path string true "Member email"
// @Success      200 {object} response.APIResponse{data=[]NetBalanceResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /settlements/group/{groupId}/balances/{email} [get]
func (h *Handler) GetNetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.NetBalances(r.Context(), chi.URLParam(r, "groupId"), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err, "Failed to get balances")
		return
	}

	resp := make([]*NetBalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = b.ToResponse(h.currency)
	}

	response.JSON(w, http.StatusOK, resp)
}
