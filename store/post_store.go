package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/ryouko/microblog/models"
)

// GormPostStore implements PostStore on a MySQL-backed gorm.DB.
type GormPostStore struct {
	db *gorm.DB
}

// NewPostStore creates a GormPostStore.
func NewPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

func (s *GormPostStore) Create(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *GormPostStore) ByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *GormPostStore) List(ctx context.Context, mode SortMode) ([]models.Post, error) {
	var posts []models.Post
	q := s.db.WithContext(ctx)
	switch mode {
	case SortLikes:
		q = q.Order("likes DESC").Order("created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormPostStore) ByAuthor(ctx context.Context, username string) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// IncrementLikes performs the increment in the database so two concurrent
// likes on the same post are both reflected. The counter is never touched
// through a read-modify-write cycle. The read happens inside the same
// transaction: the row lock taken by the UPDATE holds until commit, so the
// returned count is exactly this call's result.
func (s *GormPostStore) IncrementLikes(ctx context.Context, id uint) (int64, error) {
	var likes int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("likes + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", id).
			Select("likes").
			Scan(&likes).Error
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}

func (s *GormPostStore) Delete(ctx context.Context, id uint) error {
	tx := s.db.WithContext(ctx).Delete(&models.Post{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormPostStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}

func (s *GormPostStore) TotalLikes(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Select("COALESCE(SUM(likes),0)").
		Scan(&total).Error
	return total, err
}
