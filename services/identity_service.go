package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ryouko/microblog/models"
	"github.com/ryouko/microblog/session"
	"github.com/ryouko/microblog/store"
)

// AvatarRenderer produces an opaque image blob for a single letter. The
// concrete renderer is a collaborator; the service only caches its output
// on the user record.
type AvatarRenderer interface {
	Render(letter rune) ([]byte, error)
}

// IdentityService drives the Anonymous -> Authenticated -> Anonymous state
// machine over a session and owns all User Store writes.
type IdentityService struct {
	users    store.UserStore
	sessions *session.Store
	avatars  AvatarRenderer
}

// NewIdentityService creates an IdentityService.
func NewIdentityService(users store.UserStore, sessions *session.Store, avatars AvatarRenderer) *IdentityService {
	return &IdentityService{users: users, sessions: sessions, avatars: avatars}
}

// CurrentUser resolves the session to its user, or reports none. Pure read.
func (s *IdentityService) CurrentUser(ctx context.Context, sess *session.Session) (*models.User, bool) {
	if sess.Anonymous() {
		return nil, false
	}
	user, err := s.users.ByID(ctx, sess.UserID)
	if err != nil {
		// A stale session pointing at a vanished id resolves to no user.
		return nil, false
	}
	return user, true
}

// Register creates a local account. If the session carries a pending
// external identity hash (from an OAuth callback) it is claimed by the new
// account. On success the session transitions to Authenticated.
func (s *IdentityService) Register(ctx context.Context, sess *session.Session, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	if _, err := s.users.ByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user := &models.User{Username: username}
	if sess.PendingIdentityHash != "" {
		// Only linked accounts carry a hash; local accounts keep NULL so
		// the unique index never sees two empty values.
		hash := sess.PendingIdentityHash
		user.IdentityHash = &hash
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race between the existence check and the insert.
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	sess.UserID = user.ID
	sess.PendingIdentityHash = ""
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return user, nil
}

// Login binds the session to an existing account by username.
func (s *IdentityService) Login(ctx context.Context, sess *session.Session, username string) (*models.User, error) {
	user, err := s.users.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	sess.UserID = user.ID
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout clears all session identity fields. Side effect only; idempotent.
func (s *IdentityService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	return s.sessions.Destroy(ctx, sess.Token)
}

// ResolveExternal handles a verified external identity hash arriving from an
// OAuth callback. A hash already linked to an account logs that account in;
// an unknown hash is parked on the session so the next Register claims it.
func (s *IdentityService) ResolveExternal(ctx context.Context, sess *session.Session, hash string) (*models.User, bool, error) {
	user, err := s.users.ByIdentityHash(ctx, hash)
	if err == nil {
		sess.UserID = user.ID
		sess.PendingIdentityHash = ""
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, false, err
		}
		return user, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	sess.PendingIdentityHash = hash
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

// UpdateTheme changes the profile theme of the session's user.
func (s *IdentityService) UpdateTheme(ctx context.Context, sess *session.Session, theme string) (*models.User, error) {
	user, ok := s.CurrentUser(ctx, sess)
	if !ok {
		return nil, ErrUnauthenticated
	}

	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = models.DefaultTheme
	}
	if err := s.users.UpdateTheme(ctx, user.ID, theme); err != nil {
		return nil, err
	}
	user.Theme = theme
	return user, nil
}

// AvatarFor returns the PNG avatar for a username, rendering and persisting
// it on first request. Subsequent requests serve the stored blob.
func (s *IdentityService) AvatarFor(ctx context.Context, username string) ([]byte, error) {
	user, err := s.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	if user.HasAvatar() {
		return user.Avatar, nil
	}

	letter := firstLetter(user.Username)
	blob, err := s.avatars.Render(letter)
	if err != nil {
		return nil, err
	}
	if err := s.users.SaveAvatar(ctx, user.ID, blob); err != nil {
		return nil, err
	}
	return blob, nil
}

func firstLetter(username string) rune {
	for _, r := range username {
		return r
	}
	return '?'
}
