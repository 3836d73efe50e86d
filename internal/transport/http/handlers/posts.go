package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-content/internal/core/port"
	"github.com/arklim/social-platform-content/internal/transport/http/middleware"
	"github.com/arklim/social-platform-content/internal/usecase"
)

// PostHandler exposes post CRUD and feed endpoints.
type PostHandler struct {
	posts *usecase.PostService
}

// NewPostHandler constructs PostHandler.
func NewPostHandler(posts *usecase.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

var postErrorCases = []ErrorCase{
	{Err: usecase.ErrInvalidPostContent, Status: http.StatusBadRequest, Message: "post content must be between 1 and 2000 characters"},
	{Err: usecase.ErrPostNotFound, Status: http.StatusNotFound, Message: "post not found"},
	{Err: usecase.ErrAccessDenied, Status: http.StatusForbidden, Message: "access denied"},
	{Err: usecase.ErrStorageUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
}

// Create godoc
// @Summary Create a post
// @Description Creates a post owned by the caller. Posts default to private unless is_public is set.
// @Tags Posts
// @Accept json
// @Produce json
// @Param request body PostCreateRequest true "Post creation payload"
// @Success 201 {object} PostPayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid post payload"))
		return
	}

	isPublic := false
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	post, err := h.posts.CreatePost(c.Request.Context(), userID, req.Content, isPublic)
	if err != nil {
		RespondWithMappedError(c, err, postErrorCases, http.StatusInternalServerError, "failed to create post")
		return
	}

	c.JSON(http.StatusCreated, newPostPayload(post))
}

// Get godoc
// @Summary Fetch a single post
// @Description Returns the post when it is public or owned by the caller.
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} PostPayload
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	requesterID, _ := middleware.GetAuthenticatedUserID(c)

	post, err := h.posts.GetPost(c.Request.Context(), requesterID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, postErrorCases, http.StatusInternalServerError, "failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, newPostPayload(post))
}

// Update godoc
// @Summary Update a post
// @Description Applies a partial update to a post owned by the caller. Absent fields keep their values.
// @Tags Posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body PostUpdateRequest true "Post update payload"
// @Success 200 {object} PostPayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id} [patch]
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid post update payload"))
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), userID, c.Param("id"), usecase.PostUpdate{
		Content:  req.Content,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		RespondWithMappedError(c, err, postErrorCases, http.StatusInternalServerError, "failed to update post")
		return
	}

	c.JSON(http.StatusOK, newPostPayload(post))
}

// Delete godoc
// @Summary Delete a post
// @Description Removes a post owned by the caller.
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, postErrorCases, http.StatusInternalServerError, "failed to delete post")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPublic godoc
// @Summary List public posts
// @Description Returns the newest public posts first. Open to anonymous callers.
// @Tags Posts
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} PostListResponse
// @Router /api/v1/posts/public [get]
func (h *PostHandler) ListPublic(c *gin.Context) {
	page := pageFromQuery(c)

	posts, err := h.posts.ListPublic(c.Request.Context(), page)
	if err != nil {
		RespondWithMappedError(c, err, postErrorCases, http.StatusInternalServerError, "failed to list posts")
		return
	}

	c.JSON(http.StatusOK, newPostListResponse(posts, page.Limit, page.Offset))
}

// Feed godoc
// @Summary Personal feed
// @Description Returns public posts plus the caller's private posts. Anonymous callers see the public feed.
// @Tags Posts
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} PostListResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/posts/feed [get]
func (h *PostHandler) Feed(c *gin.Context) {
	requesterID, _ := middleware.GetAuthenticatedUserID(c)
	page := pageFromQuery(c)

	posts, err := h.posts.ListFeed(c.Request.Context(), requesterID, page)
	if err != nil {
		RespondWithMappedError(c, err, postErrorCases, http.StatusInternalServerError, "failed to list feed")
		return
	}

	c.JSON(http.StatusOK, newPostListResponse(posts, page.Limit, page.Offset))
}

// ListMine godoc
// @Summary List the caller's posts
// @Description Returns all posts owned by the caller, public and private.
// @Tags Posts
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} PostListResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/posts/mine [get]
func (h *PostHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	page := pageFromQuery(c)

	posts, err := h.posts.ListMine(c.Request.Context(), userID, page)
	if err != nil {
		RespondWithMappedError(c, err, postErrorCases, http.StatusInternalServerError, "failed to list posts")
		return
	}

	c.JSON(http.StatusOK, newPostListResponse(posts, page.Limit, page.Offset))
}

// CountMine godoc
// @Summary Count the caller's posts
// @Tags Posts
// @Produce json
// @Success 200 {object} PostCountResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/posts/mine/count [get]
func (h *PostHandler) CountMine(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	count, err := h.posts.CountMine(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, postErrorCases, http.StatusInternalServerError, "failed to count posts")
		return
	}

	c.JSON(http.StatusOK, PostCountResponse{Count: count})
}

func pageFromQuery(c *gin.Context) port.PageRequest {
	var page port.PageRequest

	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Offset = v
		}
	}

	return page
}
