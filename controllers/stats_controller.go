package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/ryouko/microblog/store"
	"github.com/ryouko/microblog/utils"
)

// StatsController provides aggregate counts for the landing page.
type StatsController struct {
	users store.UserStore
	posts store.PostStore
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(users store.UserStore, posts store.PostStore) *StatsController {
	return &StatsController{users: users, posts: posts}
}

// GetStats returns user, post and like totals. Individual failures fall
// back to 0 instead of failing the whole endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	rctx := ctx.Request.Context()

	userCount, err := s.users.Count(rctx)
	if err != nil {
		userCount = 0
	}
	postCount, err := s.posts.Count(rctx)
	if err != nil {
		postCount = 0
	}
	likeTotal, err := s.posts.TotalLikes(rctx)
	if err != nil {
		likeTotal = 0
	}

	utils.Success(ctx, gin.H{
		"users": userCount,
		"posts": postCount,
		"likes": likeTotal,
	})
}
