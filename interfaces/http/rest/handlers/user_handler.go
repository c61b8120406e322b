package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blogstore/application/services"
	"blogstore/domain/model"
	"blogstore/pkg/common"
	pkgerrors "blogstore/pkg/errors"
	"blogstore/pkg/utils"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users  *services.UserService
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		errors: errors,
		logger: logger,
	}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UserResponse is the wire shape of a user
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// UserStatsResponse is the wire shape of a user's aggregate counters
type UserStatsResponse struct {
	UserID         string `json:"userId"`
	TotalPosts     int    `json:"totalPosts"`
	PublishedPosts int    `json:"publishedPosts"`
	DraftPosts     int    `json:"draftPosts"`
	LastPostDate   string `json:"lastPostDate,omitempty"`
	UpdatedAt      string `json:"updatedAt"`
}

// UserWithStatsResponse pairs a user with their counters
type UserWithStatsResponse struct {
	User  UserResponse      `json:"user"`
	Stats UserStatsResponse `json:"stats"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toUserResponse(user))
}

// GetUser handles GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if user == nil {
		h.errors.Handle(w, r, pkgerrors.NewNotFoundError("user"))
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// GetUserByEmail handles GET /users?email=...
func (h *UserHandler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("email query parameter is required"))
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if user == nil {
		h.errors.Handle(w, r, pkgerrors.NewNotFoundError("user"))
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUser handles PUT /users/{userID}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	user, err := h.users.UpdateUser(r.Context(), userID, services.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// GetUserStats handles GET /users/{userID}/stats
func (h *UserHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := h.users.GetUserWithStats(r.Context(), userID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, UserWithStatsResponse{
		User:  toUserResponse(result.User),
		Stats: toStatsResponse(result.Stats),
	})
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: utils.FormatRFC3339(user.CreatedAt),
		UpdatedAt: utils.FormatRFC3339(user.UpdatedAt),
	}
}

func toStatsResponse(stats *model.UserStats) UserStatsResponse {
	resp := UserStatsResponse{
		UserID:         stats.UserID,
		TotalPosts:     stats.TotalPosts,
		PublishedPosts: stats.PublishedPosts,
		DraftPosts:     stats.DraftPosts,
		UpdatedAt:      utils.FormatRFC3339(stats.UpdatedAt),
	}
	if !stats.LastPostDate.IsZero() {
		resp.LastPostDate = utils.FormatRFC3339(stats.LastPostDate)
	}
	return resp
}
