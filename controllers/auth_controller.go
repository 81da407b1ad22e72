package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ryouko/microblog/config"
	"github.com/ryouko/microblog/models"
	"github.com/ryouko/microblog/services"
	"github.com/ryouko/microblog/session"
	"github.com/ryouko/microblog/utils"
)

// AuthController handles registration, login, logout, profile and the
// Google OAuth identity-linking flow.
type AuthController struct {
	identity *services.IdentityService
	sessions *session.Store
}

// NewAuthController creates an AuthController.
func NewAuthController(identity *services.IdentityService, sessions *session.Store) *AuthController {
	return &AuthController{identity: identity, sessions: sessions}
}

// Register creates a local account for a free username and signs it in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=2,max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	sess, err := ensureSession(ctx, a.sessions)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to establish session")
		return
	}

	user, err := a.identity.Register(ctx.Request.Context(), sess, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateUsername):
			utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		case errors.Is(err, services.ErrInvalidUsername):
			utils.Error(ctx, http.StatusBadRequest, 40002, "invalid username")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		}
		return
	}

	utils.Success(ctx, gin.H{"user": publicUser(user)})
}

// Login binds the session to an existing account by username.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	sess, err := ensureSession(ctx, a.sessions)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to establish session")
		return
	}

	user, err := a.identity.Login(ctx.Request.Context(), sess, req.Username)
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "unknown username")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to log in")
		return
	}

	utils.Success(ctx, gin.H{"user": publicUser(user)})
}

// Logout destroys the server-side session and expires the cookie. Calling
// it without a session is still a success.
func (a *AuthController) Logout(ctx *gin.Context) {
	if sess, ok := currentSession(ctx); ok {
		if err := a.identity.Logout(ctx.Request.Context(), sess); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to log out")
			return
		}
	}
	clearSessionCookie(ctx)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	utils.Success(ctx, publicUser(user))
}

// UpdateProfile lets the authenticated user change their profile theme.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required,max=32"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	sess, ok := currentSession(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	theme := utils.Sanitize(strings.TrimSpace(req.Theme))
	user, err := a.identity.UpdateTheme(ctx.Request.Context(), sess, theme)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update profile")
		return
	}

	utils.Success(ctx, publicUser(user))
}

// Avatar serves the PNG avatar for a username, rendering it on first request.
func (a *AuthController) Avatar(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing username")
		return
	}

	blob, err := a.identity.AvatarFor(ctx.Request.Context(), username)
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to render avatar")
		return
	}

	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Data(http.StatusOK, "image/png", blob)
}

// OAuthRedirect generates the Google authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a verified Google
// identity. The identity is reduced to a one-way hash: a hash already linked
// to an account logs that account in, an unknown hash is parked on the
// session and claimed by the next registration.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing code or state")
		return
	}

	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired state")
		return
	}

	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	token, err := cfg.Exchange(ctx.Request.Context(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "failed to exchange code")
		return
	}

	subject, err := fetchGoogleSubject(ctx.Request.Context(), token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, err.Error())
		return
	}

	sess, err := ensureSession(ctx, a.sessions)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to establish session")
		return
	}

	user, linked, err := a.identity.ResolveExternal(ctx.Request.Context(), sess, hashIdentity(subject))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to resolve identity")
		return
	}

	if linked {
		utils.Success(ctx, gin.H{"user": publicUser(user)})
		return
	}
	utils.Success(ctx, gin.H{"registration_required": true})
}

func (a *AuthController) oauthConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, fmt.Errorf("google oauth not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/google/callback", cfg.OAuthRedirectBase),
		Scopes:       []string{"openid"},
		Endpoint:     google.Endpoint,
	}, nil
}

// fetchGoogleSubject returns Google's stable account id for the token owner.
func fetchGoogleSubject(ctx context.Context, token *oauth2.Token) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.ID == "" {
		return "", fmt.Errorf("google user info response missing id")
	}
	return payload.ID, nil
}

// hashIdentity reduces a provider account id to a stable one-way join key.
// The raw id is never stored.
func hashIdentity(subject string) string {
	sum := sha256.Sum256([]byte("google:" + subject))
	return hex.EncodeToString(sum[:])
}

func publicUser(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"member_since": user.MemberSince,
		"theme":        user.Theme,
		"avatar_url":   fmt.Sprintf("/avatar/%s", user.Username),
	}
}
