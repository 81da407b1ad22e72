package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ryouko/microblog/config"
	"github.com/ryouko/microblog/services"
	"github.com/ryouko/microblog/session"
	"github.com/ryouko/microblog/utils"
)

const (
	// ContextSessionKey stores the resolved *session.Session in Gin context.
	ContextSessionKey = "session"
	// ContextUserKey stores the resolved *models.User in Gin context.
	ContextUserKey = "current_user"
)

// SessionResolver reads the session cookie and resolves the current user
// once per request. Requests without a valid session proceed as anonymous;
// handlers that need a user gate on AuthRequired.
func SessionResolver(sessions *session.Store, identity *services.IdentityService) gin.HandlerFunc {
	cookieName := config.Get().SessionCookieName
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(cookieName)
		if err == nil && token != "" {
			if sess, ok := sessions.Get(ctx.Request.Context(), token); ok {
				ctx.Set(ContextSessionKey, sess)
				if user, ok := identity.CurrentUser(ctx.Request.Context(), sess); ok {
					ctx.Set(ContextUserKey, user)
				}
			}
		}
		ctx.Next()
	}
}

// AuthRequired ensures the request carries a session resolved to a user.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, exists := ctx.Get(ContextUserKey); !exists {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
