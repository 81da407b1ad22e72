package services

import (
	"context"
	"errors"

	"github.com/ryouko/microblog/models"
	"github.com/ryouko/microblog/store"
)

// FeedService queries and mutates posts on behalf of a resolved user.
// Every operation is a single store access; results are computed fresh on
// each call and never cached.
type FeedService struct {
	posts store.PostStore
}

// NewFeedService creates a FeedService.
func NewFeedService(posts store.PostStore) *FeedService {
	return &FeedService{posts: posts}
}

// ListPosts returns all posts ordered by the requested mode. Unrecognized
// modes fall back to recency at parse time (store.ParseSortMode).
func (s *FeedService) ListPosts(ctx context.Context, mode store.SortMode) ([]models.Post, error) {
	return s.posts.List(ctx, mode)
}

// CreatePost inserts a new post authored by the given user with zero likes.
// Title and content emptiness is deliberately not validated here.
func (s *FeedService) CreatePost(ctx context.Context, author *models.User, title, content, image string) (*models.Post, error) {
	if author == nil {
		return nil, ErrUnauthenticated
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		Image:    image,
		Username: author.Username,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// LikePost increments the like counter by exactly one and returns the new
// count. Repeated likes from the same caller all count.
func (s *FeedService) LikePost(ctx context.Context, id uint) (int64, error) {
	likes, err := s.posts.IncrementLikes(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	return likes, nil
}

// DeletePost removes a post permanently. Only the author may delete; any
// other requester leaves state unchanged.
func (s *FeedService) DeletePost(ctx context.Context, id uint, requester string) error {
	post, err := s.posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if post.Username != requester {
		return ErrUnauthorized
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Deleted concurrently; the end state is what the caller asked for.
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

// ListByAuthor returns the posts of one author, newest first, for profile display.
func (s *FeedService) ListByAuthor(ctx context.Context, username string) ([]models.Post, error) {
	return s.posts.ByAuthor(ctx, username)
}
