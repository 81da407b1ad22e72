package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultTheme is assigned to every account at registration time.
const DefaultTheme = "default"

// User represents a registered account. Identity is either a locally chosen
// unique username or a linked external identity hash; no password is stored.
// IdentityHash is a pointer so local-only accounts persist NULL: a MySQL
// unique index ignores NULLs but treats '' as a value, and two local
// accounts must never collide on an identity they don't have.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	IdentityHash *string   `gorm:"size:64;uniqueIndex" json:"-"`
	Avatar       []byte    `gorm:"type:mediumblob" json:"-"`
	MemberSince  time.Time `gorm:"not null" json:"member_since"`
	Theme        string    `gorm:"size:32;not null;default:'default'" json:"theme"`
	UpdatedAt    time.Time `json:"-"`
}

// BeforeCreate fills MemberSince and Theme when the caller left them zero.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.MemberSince.IsZero() {
		u.MemberSince = time.Now()
	}
	if u.Theme == "" {
		u.Theme = DefaultTheme
	}
	return nil
}

// HasAvatar reports whether the lazily rendered avatar blob is populated.
func (u *User) HasAvatar() bool {
	return len(u.Avatar) > 0
}
