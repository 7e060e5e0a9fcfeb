package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account. PasswordHash is empty for accounts created through the
// OTP flow; such accounts cannot log in with a password until they set one.
type User struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Phone        string    `gorm:"size:20" json:"phone,omitempty"`
	IsStaff      bool      `gorm:"not null;default:false" json:"isStaff"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasUsablePassword reports whether the account can authenticate with a password.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}
