package models

import "time"

// Credential is the local login row backing the identity provider.
// Profile data lives in the user document, not here.
type Credential struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"uniqueIndex;size:64"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"` // bcrypt hash
	Disabled  bool   `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
