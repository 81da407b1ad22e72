package models

import "time"

// Post represents a feed entry. The author is referenced by denormalized
// username; the likes counter is only ever incremented through
// store.PostStore.IncrementLikes so concurrent likes cannot lose updates.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Image     string    `gorm:"size:512" json:"image,omitempty"`
	Username  string    `gorm:"size:64;index;not null" json:"username"`
	CreatedAt time.Time `json:"timestamp"`
	Likes     int64     `gorm:"not null;default:0" json:"likes"`
}
