package repository

import (
	"context"
	"errors"

	"crimewatch/internal/domain"
	"crimewatch/internal/models"

	"gorm.io/gorm"
)

type ZoneRepository struct {
	db *gorm.DB
}

func NewZoneRepository(db *gorm.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

func (r *ZoneRepository) Create(ctx context.Context, z *models.GeofenceZone) error {
	return r.db.WithContext(ctx).Create(z).Error
}

func (r *ZoneRepository) GetByID(ctx context.Context, id uint) (*models.GeofenceZone, error) {
	var z models.GeofenceZone
	err := r.db.WithContext(ctx).First(&z, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrZoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// ListActive returns active zones. Priority ordering is applied by the caller.
func (r *ZoneRepository) ListActive(ctx context.Context) ([]models.GeofenceZone, error) {
	var list []models.GeofenceZone
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *ZoneRepository) ListAll(ctx context.Context) ([]models.GeofenceZone, error) {
	var list []models.GeofenceZone
	err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error
	return list, err
}

// UpdateFields writes only the given columns of an existing zone. It never
// inserts; a missing row is ErrZoneNotFound.
func (r *ZoneRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	res := db.Model(&models.GeofenceZone{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// mysql reports changed rows, so an update with identical values also lands here
	var n int64
	if err := db.Model(&models.GeofenceZone{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrZoneNotFound
	}
	return nil
}

// UpdateStats writes the derived crime statistics and nothing else.
func (r *ZoneRepository) UpdateStats(ctx context.Context, id uint, st models.ZoneStats) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"crime_count":                st.CrimeCount,
		"average_verification_score": st.AverageVerificationScore,
		"risk_level":                 st.RiskLevel,
		"stats_refreshed_at":         st.RefreshedAt,
	})
}

// Delete hard-deletes the zone. History rows keep their zone id.
func (r *ZoneRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.GeofenceZone{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrZoneNotFound
	}
	return nil
}
