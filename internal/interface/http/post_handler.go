package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	postapp "github.com/oksasatya/postboard/internal/application"
	"github.com/oksasatya/postboard/internal/interface/middleware"
	"github.com/oksasatya/postboard/pkg/response"
)

type PostHandler struct {
	Svc *postapp.PostService
}

func NewPostHandler(svc *postapp.PostService) *PostHandler {
	return &PostHandler{Svc: svc}
}

type textRequest struct {
	Text string `json:"text" binding:"required,notblank"`
}

// Create POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req textRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.CreatePost(c.Request.Context(), middleware.UserID(c), req.Text)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "post created", nil)
}

// List GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Svc.ListPosts(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "posts", map[string]any{"count": len(posts)})
}

// Get GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "post", nil)
}

// Delete DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.DeletePost(c.Request.Context(), middleware.UserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"id": id}, "post removed", nil)
}

// AddComment POST /api/posts/comment/:id
func (h *PostHandler) AddComment(c *gin.Context) {
	var req textRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.AddComment(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Text)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "comment added", nil)
}

// RemoveComment DELETE /api/posts/comment/:id/:comment_id
func (h *PostHandler) RemoveComment(c *gin.Context) {
	p, err := h.Svc.RemoveComment(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("comment_id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "comment removed", nil)
}

// Like PUT /api/posts/like/:id
func (h *PostHandler) Like(c *gin.Context) {
	p, err := h.Svc.LikePost(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "post liked", nil)
}

// Unlike PUT /api/posts/unlike/:id
func (h *PostHandler) Unlike(c *gin.Context) {
	p, err := h.Svc.UnlikePost(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "post unliked", nil)
}
