package store

import (
	"context"
	"errors"

	"github.com/ryouko/microblog/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// SortMode selects the ordering of a feed listing.
type SortMode string

const (
	// SortRecency orders by creation time, newest first.
	SortRecency SortMode = "recency"
	// SortLikes orders by like count, creation time as tie-break.
	SortLikes SortMode = "likes"
)

// ParseSortMode maps a request-supplied string onto a SortMode.
// Unrecognized or empty input falls back to recency.
func ParseSortMode(s string) SortMode {
	if SortMode(s) == SortLikes {
		return SortLikes
	}
	return SortRecency
}

// UserStore is the persistence capability for accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByIdentityHash(ctx context.Context, hash string) (*models.User, error)
	SaveAvatar(ctx context.Context, id uint, avatar []byte) error
	UpdateTheme(ctx context.Context, id uint, theme string) error
	Count(ctx context.Context) (int64, error)
}

// PostStore is the persistence capability for feed entries.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	ByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, mode SortMode) ([]models.Post, error)
	ByAuthor(ctx context.Context, username string) ([]models.Post, error)
	// IncrementLikes bumps the counter by exactly one in a single UPDATE
	// and returns the new count. Returns ErrNotFound for unknown ids.
	IncrementLikes(ctx context.Context, id uint) (int64, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	TotalLikes(ctx context.Context) (int64, error)
}
