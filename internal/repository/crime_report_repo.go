package repository

import (
	"context"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/internal/models"
	"crimewatch/pkg/location"

	"gorm.io/gorm"
)

// CrimeReportFilter narrows the approved-report query. Zero values mean no bound.
type CrimeReportFilter struct {
	Since *time.Time
	Box   *location.Box
}

type CrimeReportRepository struct {
	db *gorm.DB
}

func NewCrimeReportRepository(db *gorm.DB) *CrimeReportRepository {
	return &CrimeReportRepository{db: db}
}

// ListApproved returns approved, non-deleted reports that carry coordinates.
func (r *CrimeReportRepository) ListApproved(ctx context.Context, f CrimeReportFilter) ([]models.CrimeReport, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND is_deleted = ?", domain.PostStatusApproved, false).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	if f.Since != nil {
		q = q.Where("crime_date >= ?", *f.Since)
	}
	if f.Box != nil {
		q = q.Where("latitude BETWEEN ? AND ?", f.Box.MinLat, f.Box.MaxLat)
		if !f.Box.WrapsLongitude() {
			q = q.Where("longitude BETWEEN ? AND ?", f.Box.MinLng, f.Box.MaxLng)
		}
	}
	var list []models.CrimeReport
	err := q.Order("id ASC").Find(&list).Error
	return list, err
}

// Create is used by seeding and tests; the posts module owns writes in production.
func (r *CrimeReportRepository) Create(ctx context.Context, p *models.CrimeReport) error {
	return r.db.WithContext(ctx).Create(p).Error
}
