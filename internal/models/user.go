package models

import (
	"time"

	"crimewatch/internal/domain"
)

// User is owned by the auth module; the geofence core only reads it.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role      string    `gorm:"size:20;not null;default:'USER';index" json:"role"` // USER | ADMIN
	FCMToken  string    `gorm:"size:512" json:"-"`                                 // For push notifications
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }
