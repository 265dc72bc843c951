package service

import (
	"context"
	"time"

	"crimewatch/internal/models"
	"crimewatch/internal/repository"
)

// ZoneStore persists geofence zones. *repository.ZoneRepository implements it.
type ZoneStore interface {
	Create(ctx context.Context, z *models.GeofenceZone) error
	GetByID(ctx context.Context, id uint) (*models.GeofenceZone, error)
	ListActive(ctx context.Context) ([]models.GeofenceZone, error)
	ListAll(ctx context.Context) ([]models.GeofenceZone, error)
	// UpdateFields and UpdateStats write only the named columns of an existing
	// row and return domain.ErrZoneNotFound when it is gone.
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	UpdateStats(ctx context.Context, id uint, st models.ZoneStats) error
	Delete(ctx context.Context, id uint) error
}

// CrimeReportSource is the read-only crime report query.
type CrimeReportSource interface {
	ListApproved(ctx context.Context, f repository.CrimeReportFilter) ([]models.CrimeReport, error)
}

// HistoryStore is the append-only location history, also the source of truth
// for "was this user already alerted for this zone".
type HistoryStore interface {
	Create(ctx context.Context, h *models.UserLocationHistory) error
	HasRecentAlert(ctx context.Context, userID, zoneID uint, since time.Time) (bool, error)
	ListByUserID(ctx context.Context, userID uint, limit int) ([]models.LocationHistoryEntry, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	MarkPushed(ctx context.Context, id uint) error
}

// ActiveZoneCache caches the priority-ordered active zone list. GetActive
// returns the cache version even on a miss; SetActive stores under that
// version, so a list read before an Invalidate is never served after it.
type ActiveZoneCache interface {
	GetActive(ctx context.Context) (zones []models.GeofenceZone, version string, ok bool)
	SetActive(ctx context.Context, version string, zones []models.GeofenceZone)
	Invalidate(ctx context.Context)
}

type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// GeofenceNotifier is the notification sink used by the location recorder.
type GeofenceNotifier interface {
	CreateGeofenceWarning(ctx context.Context, userID uint, zone *models.GeofenceZone) (*models.Notification, error)
}

type noopCache struct{}

func (noopCache) GetActive(context.Context) ([]models.GeofenceZone, string, bool) {
	return nil, "", false
}
func (noopCache) SetActive(context.Context, string, []models.GeofenceZone) {}
func (noopCache) Invalidate(context.Context) {}

type noopEvents struct{}

func (noopEvents) Publish(string, interface{}) error { return nil }
