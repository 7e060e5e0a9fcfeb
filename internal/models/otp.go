package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPCode is a single-use login code requested for an email address. The code
// itself is stored bcrypt-hashed; the row is deleted on successful verification.
type OTPCode struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    *uuid.UUID `gorm:"type:char(36);index"`
	Email     string     `gorm:"index;size:255;not null"`
	CodeHash  string     `gorm:"size:255;not null"`
	ExpiresAt time.Time  `gorm:"index"`
	CreatedAt time.Time
}
