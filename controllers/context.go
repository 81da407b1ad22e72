package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/ryouko/microblog/config"
	"github.com/ryouko/microblog/middleware"
	"github.com/ryouko/microblog/models"
	"github.com/ryouko/microblog/session"
)

// currentSession returns the session resolved by the middleware, if any.
func currentSession(ctx *gin.Context) (*session.Session, bool) {
	value, exists := ctx.Get(middleware.ContextSessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok
}

// currentUser returns the user resolved by the middleware, if any.
func currentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// ensureSession returns the request's session, minting one and setting the
// cookie when the browser arrived without it.
func ensureSession(ctx *gin.Context, sessions *session.Store) (*session.Session, error) {
	if sess, ok := currentSession(ctx); ok {
		return sess, nil
	}

	sess, err := sessions.Create(ctx.Request.Context())
	if err != nil {
		return nil, err
	}

	cfg := config.Get()
	ctx.SetCookie(cfg.SessionCookieName, sess.Token, cfg.SessionTTLHours*3600, "/", "", false, true)
	ctx.Set(middleware.ContextSessionKey, sess)
	return sess, nil
}

// clearSessionCookie expires the session cookie on the client.
func clearSessionCookie(ctx *gin.Context) {
	ctx.SetCookie(config.Get().SessionCookieName, "", -1, "/", "", false, true)
}
