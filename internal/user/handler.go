package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsmart/pkg/response"
)

// Handler handles HTTP requests for user operations
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{email}", h.GetByEmail)

	return r
}

// Create handles POST /users
// @Summary      Create a new user
// @Description  Register a participant by name and email. Emails are case-insensitive.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User creation request"
// @Success      201 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUser):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrEmailAlreadyInUse):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to create user")
		}
		return
	}

	response.JSON(w, http.StatusCreated, user.ToResponse())
}

// GetByEmail handles GET /users/{email}
// @Summary      Get user by email
// @Tags         users
// @Produce      json
// @Param        email path string true "User email"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /users/{email} [get]
func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get user")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// List handles GET /users
// @Summary      List all users
// @Description  Get a paginated list of all users ordered by email
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]UserResponse}
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := response.PageParams(r)

	users, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	resp := make([]*UserResponse, len(users))
	for i, u := range users {
		resp[i] = u.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, resp, response.Pagination(page, perPage, total))
}
