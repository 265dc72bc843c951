package repository

import (
	"context"
	"time"

	"crimewatch/internal/models"

	"gorm.io/gorm"
)

type LocationHistoryRepository struct {
	db *gorm.DB
}

func NewLocationHistoryRepository(db *gorm.DB) *LocationHistoryRepository {
	return &LocationHistoryRepository{db: db}
}

func (r *LocationHistoryRepository) Create(ctx context.Context, h *models.UserLocationHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// HasRecentAlert reports whether the user was alerted for the zone strictly after since.
func (r *LocationHistoryRepository) HasRecentAlert(ctx context.Context, userID, zoneID uint, since time.Time) (bool, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.UserLocationHistory{}).
		Where("user_id = ? AND geofence_zone_id = ? AND notification_sent = ? AND timestamp > ?", userID, zoneID, true, since).
		Count(&c).Error
	return c > 0, err
}

// ListByUserID returns newest-first history joined with zone name and risk.
// The join is LEFT so rows pointing at deleted zones still come back.
func (r *LocationHistoryRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]models.LocationHistoryEntry, error) {
	var list []models.LocationHistoryEntry
	err := r.db.WithContext(ctx).
		Table("user_location_history AS h").
		Select("h.*, z.name AS zone_name, z.risk_level AS zone_risk_level").
		Joins("LEFT JOIN geofence_zones AS z ON z.id = h.geofence_zone_id").
		Where("h.user_id = ?", userID).
		Order("h.timestamp DESC, h.id DESC").
		Limit(limit).
		Scan(&list).Error
	return list, err
}
