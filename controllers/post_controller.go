package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ryouko/microblog/services"
	"github.com/ryouko/microblog/store"
	"github.com/ryouko/microblog/utils"
)

// PostController exposes the feed over HTTP.
type PostController struct {
	feed *services.FeedService
}

// NewPostController creates a new PostController instance.
func NewPostController(feed *services.FeedService) *PostController {
	return &PostController{feed: feed}
}

// ListPosts returns the whole feed ordered by the requested sort mode.
// Unrecognized or absent modes fall back to recency.
func (p *PostController) ListPosts(ctx *gin.Context) {
	mode := store.ParseSortMode(strings.TrimSpace(ctx.Query("sort")))

	posts, err := p.feed.ListPosts(ctx.Request.Context(), mode)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	payload := gin.H{"items": posts, "sort": string(mode)}
	if user, ok := currentUser(ctx); ok {
		payload["user"] = publicUser(user)
	}
	utils.Success(ctx, payload)
}

// CreatePost allows authenticated users to publish a new post.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Image   string `json:"image"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	author, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	// Title and content pass through unchecked for emptiness; HTML is
	// sanitized to keep stored markup safe for rendering.
	title := utils.Sanitize(req.Title)
	content := utils.Sanitize(req.Content)

	post, err := p.feed.CreatePost(ctx.Request.Context(), author, title, content, strings.TrimSpace(req.Image))
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

// LikePost increments a post's like counter and returns the new count.
func (p *PostController) LikePost(ctx *gin.Context) {
	id, ok := parsePostID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid post id")
		return
	}

	likes, err := p.feed.LikePost(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to like post")
		return
	}

	utils.Success(ctx, gin.H{"likes": likes})
}

// DeletePost allows the author to delete their post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parsePostID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid post id")
		return
	}

	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	if err := p.feed.DeletePost(ctx.Request.Context(), id, user.Username); err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
		case errors.Is(err, services.ErrUnauthorized):
			utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own posts")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		}
		return
	}

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ListUserPosts returns the posts of one author for profile display.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40060, "missing username")
		return
	}

	posts, err := p.feed.ListByAuthor(ctx.Request.Context(), username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list user posts")
		return
	}

	utils.Success(ctx, gin.H{"items": posts})
}

func parsePostID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
