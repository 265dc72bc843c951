package domain

import "math"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Risk levels for geofence zones.
const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// RiskOrdinal ranks risk levels; higher is worse. Unknown levels rank 0.
func RiskOrdinal(level string) int {
	switch level {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// ValidRiskLevel reports whether level is one of the known risk levels.
func ValidRiskLevel(level string) bool {
	return RiskOrdinal(level) > 0
}

const (
	ZoneSourceManual = "MANUAL"
	ZoneSourceAuto   = "AUTO"
)

const (
	NotificationGeofenceWarning = "GEOFENCE_WARNING"
	NotificationPostApproved    = "POST_APPROVED"
	NotificationSystem          = "SYSTEM"
)

// Crime report (post) moderation statuses.
const (
	PostStatusPending  = "PENDING"
	PostStatusApproved = "APPROVED"
	PostStatusRejected = "REJECTED"
)

// ValidCoordinates reports whether lat/lng are finite WGS84 degrees.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
