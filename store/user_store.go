package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ryouko/microblog/models"
)

// GormUserStore implements UserStore on a MySQL-backed gorm.DB.
type GormUserStore struct {
	db *gorm.DB
}

// NewUserStore creates a GormUserStore.
func NewUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *GormUserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormUserStore) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormUserStore) ByIdentityHash(ctx context.Context, hash string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("identity_hash = ?", hash).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormUserStore) SaveAvatar(ctx context.Context, id uint, avatar []byte) error {
	tx := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("avatar", avatar)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormUserStore) UpdateTheme(ctx context.Context, id uint, theme string) error {
	tx := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("theme", theme)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormUserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isDuplicateKey matches MySQL error 1062 without importing the driver here.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") || strings.Contains(msg, "Duplicate entry")
}
