package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blogstore/application/services"
	"blogstore/domain/model"
	"blogstore/pkg/common"
	pkgerrors "blogstore/pkg/errors"
	"blogstore/pkg/utils"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	posts  *services.PostService
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *services.PostService, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		errors: errors,
		logger: logger,
	}
}

// CreatePostRequest represents the request body for creating a post
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=200"`
	Content string   `json:"content,omitempty"`
	Status  string   `json:"status,omitempty" validate:"omitempty,max=50"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// UpdatePostRequest represents the request body for updating a post
type UpdatePostRequest struct {
	Title   *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string   `json:"content,omitempty"`
	Status  *string   `json:"status,omitempty" validate:"omitempty,min=1,max=50"`
	Tags    *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// PostResponse is the wire shape of a post
type PostResponse struct {
	PostID    string   `json:"postId"`
	UserID    string   `json:"userId"`
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// CreatePost handles POST /users/{userID}/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	post, err := h.posts.CreatePost(r.Context(), userID, req.Title, req.Content, req.Status, req.Tags)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toPostResponse(post))
}

// ListUserPosts handles GET /users/{userID}/posts. A status query
// parameter switches the read to the posts_by_user_status view; limit
// only applies to the unfiltered listing.
func (h *PostHandler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var posts []*model.Post
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		posts, err = h.posts.GetUserPostsByStatus(r.Context(), userID, status)
	} else {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				h.errors.Handle(w, r, pkgerrors.NewValidationError("limit must be an integer"))
				return
			}
		}
		posts, err = h.posts.GetUserPosts(r.Context(), userID, limit)
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	responses := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, toPostResponse(post))
	}
	common.RespondJSON(w, http.StatusOK, responses)
}

// GetPost handles GET /posts/{postID}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	post, err := h.posts.GetPostByID(r.Context(), postID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if post == nil {
		h.errors.Handle(w, r, pkgerrors.NewNotFoundError("post"))
		return
	}

	common.RespondJSON(w, http.StatusOK, toPostResponse(post))
}

// UpdatePost handles PUT /users/{userID}/posts/{postID}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	postID := chi.URLParam(r, "postID")

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), userID, postID, model.PostUpdate{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
		Tags:    req.Tags,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toPostResponse(post))
}

// PublishPost handles PUT /users/{userID}/posts/{postID}/publish
func (h *PostHandler) PublishPost(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	postID := chi.URLParam(r, "postID")

	post, err := h.posts.PublishPost(r.Context(), userID, postID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toPostResponse(post))
}

// DeletePost handles DELETE /users/{userID}/posts/{postID}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	postID := chi.URLParam(r, "postID")

	if err := h.posts.DeletePost(r.Context(), userID, postID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toPostResponse(post *model.Post) PostResponse {
	return PostResponse{
		PostID:    post.PostID,
		UserID:    post.UserID,
		Title:     post.Title,
		Content:   post.Content,
		Status:    post.Status,
		Tags:      post.Tags,
		CreatedAt: utils.FormatRFC3339(post.CreatedAt),
		UpdatedAt: utils.FormatRFC3339(post.UpdatedAt),
	}
}
