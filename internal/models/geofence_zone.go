package models

import "time"

// GeofenceZone is a circular risk area. CrimeCount, AverageVerificationScore and
// RiskLevel are derived from crime reports by the stats refresh.
type GeofenceZone struct {
	ID                       uint       `gorm:"primaryKey" json:"id"`
	Name                     string     `gorm:"size:255;not null" json:"name"`
	CenterLatitude           float64    `gorm:"type:decimal(10,8);not null;index:idx_zone_center" json:"center_latitude"`
	CenterLongitude          float64    `gorm:"type:decimal(11,8);not null;index:idx_zone_center" json:"center_longitude"`
	RadiusMeters             float64    `gorm:"not null" json:"radius_meters"`
	RiskLevel                string     `gorm:"size:16;not null;default:'MEDIUM';index" json:"risk_level"`
	CrimeCount               int        `gorm:"not null;default:0" json:"crime_count"`
	AverageVerificationScore float64    `gorm:"type:decimal(5,2);not null;default:0" json:"average_verification_score"`
	District                 *string    `gorm:"size:128" json:"district"`
	Division                 *string    `gorm:"size:128" json:"division"`
	IsActive                 bool       `gorm:"not null;default:true;index" json:"is_active"`
	Source                   string     `gorm:"size:16;not null;default:'MANUAL'" json:"source"` // MANUAL | AUTO
	StatsRefreshedAt         *time.Time `json:"stats_refreshed_at"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

func (GeofenceZone) TableName() string {
	return "geofence_zones"
}

// ZoneStats is the derived part of a zone written by the stats refresh.
type ZoneStats struct {
	CrimeCount               int
	AverageVerificationScore float64
	RiskLevel                string
	RefreshedAt              time.Time
}
