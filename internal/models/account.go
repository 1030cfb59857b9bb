// Package models contains data structures for the application's domain models.
package models

import "time"

// Account is a registered identity. Username and email are unique.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileRecord is one profile-image upload. Records accumulate; the newest wins.
type ProfileRecord struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	AccountID uint    `gorm:"not null;index" json:"account_id"`
	Account   Account `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ImagePath string  `gorm:"not null;index" json:"image_path"`
	// Followers is a free-text placeholder and is never populated.
	Followers string    `json:"followers"`
	CreatedAt time.Time `json:"created_at"`
}
