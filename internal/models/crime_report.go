package models

import "time"

// CrimeReport is the read-only view of a user-submitted crime post that the
// geofence core aggregates. Posts are owned by the posts module.
type CrimeReport struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"size:255" json:"title"`
	Latitude          *float64  `gorm:"type:decimal(10,8);index:idx_post_coords" json:"latitude"`
	Longitude         *float64  `gorm:"type:decimal(11,8);index:idx_post_coords" json:"longitude"`
	VerificationScore float64   `gorm:"type:decimal(5,2);not null;default:0" json:"verification_score"`
	Status            string    `gorm:"size:20;not null;default:'PENDING';index" json:"status"` // PENDING, APPROVED, REJECTED
	IsDeleted         bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	District          string    `gorm:"size:128" json:"district"`
	Division          string    `gorm:"size:128" json:"division"`
	CrimeDate         time.Time `gorm:"not null;index" json:"crime_date"`
	CreatedAt         time.Time `json:"created_at"`
}

func (CrimeReport) TableName() string {
	return "posts"
}
