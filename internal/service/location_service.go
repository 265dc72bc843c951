package service

import (
	"context"
	"log/slog"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/internal/events"
	"crimewatch/internal/logger"
	"crimewatch/internal/metrics"
	"crimewatch/internal/models"
	"crimewatch/pkg/location"
)

// ActiveZoneLister yields active zones in priority order. *ZoneService implements it.
type ActiveZoneLister interface {
	ListActiveZones(ctx context.Context) ([]models.GeofenceZone, error)
}

// AlertPolicy decides whether an alert for (user, zone) may go out now.
type AlertPolicy interface {
	ShouldSendAlert(ctx context.Context, userID, zoneID uint) (bool, error)
}

type LocationInput struct {
	UserID    uint
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Address   *string
	Activity  *string
}

// LocationResult is the outcome of one recorded ping. Zone is nil when the
// point is outside every active zone.
type LocationResult struct {
	Location         *models.UserLocationHistory `json:"location"`
	Zone             *models.GeofenceZone        `json:"zone"`
	NotificationSent bool                        `json:"notification_sent"`
}

type LocationService struct {
	zones        ActiveZoneLister
	history      HistoryStore
	users        UserDirectory
	policy       AlertPolicy
	notifier     GeofenceNotifier
	events       EventPublisher
	defaultLimit int
	maxLimit     int
	now          func() time.Time
	log          *slog.Logger
}

func NewLocationService(zones ActiveZoneLister, history HistoryStore, users UserDirectory, policy AlertPolicy, notifier GeofenceNotifier, pub EventPublisher) *LocationService {
	if pub == nil {
		pub = noopEvents{}
	}
	return &LocationService{
		zones:        zones,
		history:      history,
		users:        users,
		policy:       policy,
		notifier:     notifier,
		events:       pub,
		defaultLimit: 100,
		maxLimit:     500,
		now:          time.Now,
		log:          logger.Component("location"),
	}
}

// SetHistoryLimits overrides the default and maximum page size of ListHistory.
func (s *LocationService) SetHistoryLimits(def, max int) {
	if def > 0 {
		s.defaultLimit = def
	}
	if max > 0 {
		s.maxLimit = max
	}
}

// FindZone returns the first zone, in the given order, whose circle contains
// the point.
func FindZone(zones []models.GeofenceZone, lat, lng float64) *models.GeofenceZone {
	for i := range zones {
		z := &zones[i]
		d := location.DistanceMeters(lat, lng, z.CenterLatitude, z.CenterLongitude)
		if location.Within(d, z.RadiusMeters) {
			return z
		}
	}
	return nil
}

// RecordLocation stores a location ping, attributes it to the highest
// priority zone containing it, and sends a deduplicated geofence warning.
// A failed warning never fails the ping; a failed history write does.
func (s *LocationService) RecordLocation(ctx context.Context, in LocationInput) (*LocationResult, error) {
	start := time.Now()
	defer func() {
		metrics.LocationCheckDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()
	if !domain.ValidCoordinates(in.Latitude, in.Longitude) {
		return nil, domain.ErrInvalidCoordinates
	}
	ok, err := s.users.Exists(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	metrics.LocationChecksTotal.Inc()
	log := logger.FromContext(ctx, s.log)

	zones, err := s.zones.ListActiveZones(ctx)
	if err != nil {
		return nil, err
	}
	zone := FindZone(zones, in.Latitude, in.Longitude)

	sent := false
	if zone != nil {
		metrics.ZoneMatchesTotal.WithLabelValues(zone.RiskLevel).Inc()
		allowed, err := s.policy.ShouldSendAlert(ctx, in.UserID, zone.ID)
		if err != nil {
			return nil, err
		}
		if allowed {
			sent = true
			if _, err := s.notifier.CreateGeofenceWarning(ctx, in.UserID, zone); err != nil {
				metrics.AlertsTotal.WithLabelValues("failed").Inc()
				log.Warn("geofence warning failed", "user_id", in.UserID, "zone_id", zone.ID, "err", err)
			} else {
				metrics.AlertsTotal.WithLabelValues("sent").Inc()
			}
		} else {
			metrics.AlertsTotal.WithLabelValues("suppressed").Inc()
		}
	}

	h := &models.UserLocationHistory{
		UserID:           in.UserID,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		Accuracy:         in.Accuracy,
		Address:          in.Address,
		Activity:         in.Activity,
		NotificationSent: sent,
		Timestamp:        s.now(),
	}
	if zone != nil {
		id := zone.ID
		h.GeofenceZoneID = &id
	}
	if err := s.history.Create(ctx, h); err != nil {
		return nil, err
	}

	if zone != nil {
		_ = s.events.Publish(events.SubjectZoneEntered, map[string]interface{}{
			"user_id":           in.UserID,
			"zone_id":           zone.ID,
			"risk_level":        zone.RiskLevel,
			"notification_sent": sent,
		})
		log.Debug("zone entered", "user_id", in.UserID, "zone_id", zone.ID, "alert", sent)
	}
	return &LocationResult{Location: h, Zone: zone, NotificationSent: sent}, nil
}

// ListHistory returns the user's most recent pings, newest first.
func (s *LocationService) ListHistory(ctx context.Context, userID uint, limit int) ([]models.LocationHistoryEntry, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.history.ListByUserID(ctx, userID, limit)
}
