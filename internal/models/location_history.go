package models

import "time"

// UserLocationHistory is one append-only location ping. GeofenceZoneID has no
// foreign key constraint: deleting a zone leaves the reference dangling.
type UserLocationHistory struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index:idx_history_user_time;index:idx_history_alert" json:"user_id"`
	Latitude         float64   `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude        float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	Accuracy         *float64  `gorm:"type:decimal(8,2)" json:"accuracy"`
	Address          *string   `gorm:"size:512" json:"address"`
	Activity         *string   `gorm:"size:64" json:"activity"`
	GeofenceZoneID   *uint     `gorm:"index:idx_history_alert" json:"geofence_zone_id"`
	NotificationSent bool      `gorm:"not null;default:false;index:idx_history_alert" json:"notification_sent"`
	Timestamp        time.Time `gorm:"not null;index:idx_history_user_time;index:idx_history_alert" json:"timestamp"`
}

func (UserLocationHistory) TableName() string {
	return "user_location_history"
}

// LocationHistoryEntry is a history row joined with its zone. Zone fields are
// nil when the row matched no zone or the zone has since been deleted.
type LocationHistoryEntry struct {
	UserLocationHistory
	ZoneName      *string `json:"zone_name"`
	ZoneRiskLevel *string `json:"zone_risk_level"`
}
