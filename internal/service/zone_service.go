package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/internal/events"
	"crimewatch/internal/logger"
	"crimewatch/internal/metrics"
	"crimewatch/internal/models"
	"crimewatch/internal/repository"
	"crimewatch/pkg/location"
)

// DefaultAverageScore is used when no crime reports fall inside a zone.
const DefaultAverageScore = 50.0

// ZoneInput is the admin payload for a new zone.
type ZoneInput struct {
	Name            string
	CenterLatitude  float64
	CenterLongitude float64
	RadiusMeters    float64
	RiskLevel       string // optional, defaults to MEDIUM until stats are refreshed
	District        *string
	Division        *string
}

// ZonePatch carries optional field updates; nil fields are left unchanged.
type ZonePatch struct {
	Name            *string
	CenterLatitude  *float64
	CenterLongitude *float64
	RadiusMeters    *float64
	RiskLevel       *string
	District        *string
	Division        *string
	IsActive        *bool
}

// RefreshSummary reports the outcome of a bulk stats refresh.
type RefreshSummary struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// ZoneService owns zone CRUD, the priority ordered active list and the
// crime statistics refresh.
type ZoneService struct {
	zones   ZoneStore
	reports CrimeReportSource
	cache   ActiveZoneCache
	events  EventPublisher
	now     func() time.Time
	log     *slog.Logger
}

func NewZoneService(zones ZoneStore, reports CrimeReportSource, cache ActiveZoneCache, pub EventPublisher) *ZoneService {
	if cache == nil {
		cache = noopCache{}
	}
	if pub == nil {
		pub = noopEvents{}
	}
	return &ZoneService{
		zones:   zones,
		reports: reports,
		cache:   cache,
		events:  pub,
		now:     time.Now,
		log:     logger.Component("zones"),
	}
}

// SortByPriority orders zones by risk (CRITICAL first), then by crime count
// descending. Equal zones keep their input order.
func SortByPriority(zones []models.GeofenceZone) {
	sort.SliceStable(zones, func(i, j int) bool {
		ri, rj := domain.RiskOrdinal(zones[i].RiskLevel), domain.RiskOrdinal(zones[j].RiskLevel)
		if ri != rj {
			return ri > rj
		}
		return zones[i].CrimeCount > zones[j].CrimeCount
	})
}

// RiskFromStats derives a zone's risk level. The first matching rule wins.
func RiskFromStats(crimeCount int, avgScore float64) string {
	switch {
	case crimeCount >= 20 || avgScore < 40:
		return domain.RiskCritical
	case crimeCount >= 10 || avgScore < 50:
		return domain.RiskHigh
	case crimeCount >= 5 || avgScore < 60:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func validateZoneShape(name string, lat, lng, radius float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidZone)
	}
	if !domain.ValidCoordinates(lat, lng) {
		return domain.ErrInvalidCoordinates
	}
	if !(radius > 0) {
		return fmt.Errorf("%w: radius must be positive", domain.ErrInvalidZone)
	}
	return nil
}

// ListActiveZones returns active zones in priority order, served from the
// cache when it is warm.
func (s *ZoneService) ListActiveZones(ctx context.Context) ([]models.GeofenceZone, error) {
	zones, version, ok := s.cache.GetActive(ctx)
	if ok {
		return zones, nil
	}
	zones, err := s.zones.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	SortByPriority(zones)
	s.cache.SetActive(ctx, version, zones)
	return zones, nil
}

// ListZones returns every zone, active or not, in priority order.
func (s *ZoneService) ListZones(ctx context.Context) ([]models.GeofenceZone, error) {
	zones, err := s.zones.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	SortByPriority(zones)
	return zones, nil
}

func (s *ZoneService) GetZone(ctx context.Context, id uint) (*models.GeofenceZone, error) {
	return s.zones.GetByID(ctx, id)
}

func (s *ZoneService) CreateZone(ctx context.Context, in ZoneInput) (*models.GeofenceZone, error) {
	if err := validateZoneShape(in.Name, in.CenterLatitude, in.CenterLongitude, in.RadiusMeters); err != nil {
		return nil, err
	}
	risk := domain.RiskMedium
	if in.RiskLevel != "" {
		risk = strings.ToUpper(in.RiskLevel)
		if !domain.ValidRiskLevel(risk) {
			return nil, fmt.Errorf("%w: unknown risk level %q", domain.ErrInvalidZone, in.RiskLevel)
		}
	}
	z := &models.GeofenceZone{
		Name:            strings.TrimSpace(in.Name),
		CenterLatitude:  in.CenterLatitude,
		CenterLongitude: in.CenterLongitude,
		RadiusMeters:    in.RadiusMeters,
		RiskLevel:       risk,
		District:        in.District,
		Division:        in.Division,
		IsActive:        true,
		Source:          domain.ZoneSourceManual,
	}
	if err := s.insert(ctx, z); err != nil {
		return nil, err
	}
	return z, nil
}

// insert persists z and announces the change. Shared with the hotspot generator.
func (s *ZoneService) insert(ctx context.Context, z *models.GeofenceZone) error {
	if err := s.zones.Create(ctx, z); err != nil {
		return err
	}
	s.changed(ctx, "created", z.ID)
	return nil
}

// UpdateZone applies p. Only the patched columns are written, so a concurrent
// stats refresh or delete is never overwritten with this request's snapshot.
func (s *ZoneService) UpdateZone(ctx context.Context, id uint, p ZonePatch) (*models.GeofenceZone, error) {
	z, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if p.Name != nil {
		z.Name = strings.TrimSpace(*p.Name)
		fields["name"] = z.Name
	}
	if p.CenterLatitude != nil {
		z.CenterLatitude = *p.CenterLatitude
		fields["center_latitude"] = z.CenterLatitude
	}
	if p.CenterLongitude != nil {
		z.CenterLongitude = *p.CenterLongitude
		fields["center_longitude"] = z.CenterLongitude
	}
	if p.RadiusMeters != nil {
		z.RadiusMeters = *p.RadiusMeters
		fields["radius_meters"] = z.RadiusMeters
	}
	if p.RiskLevel != nil {
		risk := strings.ToUpper(*p.RiskLevel)
		if !domain.ValidRiskLevel(risk) {
			return nil, fmt.Errorf("%w: unknown risk level %q", domain.ErrInvalidZone, *p.RiskLevel)
		}
		z.RiskLevel = risk
		fields["risk_level"] = risk
	}
	if p.District != nil {
		z.District = p.District
		fields["district"] = *p.District
	}
	if p.Division != nil {
		z.Division = p.Division
		fields["division"] = *p.Division
	}
	if p.IsActive != nil {
		z.IsActive = *p.IsActive
		fields["is_active"] = *p.IsActive
	}
	if err := validateZoneShape(z.Name, z.CenterLatitude, z.CenterLongitude, z.RadiusMeters); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return z, nil
	}
	if err := s.zones.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	s.changed(ctx, "updated", id)
	return s.zones.GetByID(ctx, id)
}

// DeleteZone hard-deletes a zone. History rows keep their dangling zone id.
func (s *ZoneService) DeleteZone(ctx context.Context, id uint) error {
	if err := s.zones.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "deleted", id)
	return nil
}

// RefreshZoneStats recomputes crime count, average verification score and
// risk level from approved reports inside the zone's circle.
func (s *ZoneService) RefreshZoneStats(ctx context.Context, id uint) (*models.GeofenceZone, error) {
	z, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, z); err != nil {
		metrics.ZoneStatsRefreshTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ZoneStatsRefreshTotal.WithLabelValues("ok").Inc()
	s.changed(ctx, "stats_refreshed", id)
	return s.zones.GetByID(ctx, id)
}

// refresh writes only the derived columns of z.
func (s *ZoneService) refresh(ctx context.Context, z *models.GeofenceZone) error {
	box := location.BoundingBox(z.CenterLatitude, z.CenterLongitude, z.RadiusMeters)
	reports, err := s.reports.ListApproved(ctx, repository.CrimeReportFilter{Box: &box})
	if err != nil {
		return err
	}
	count := 0
	sum := 0.0
	for _, r := range reports {
		if r.Latitude == nil || r.Longitude == nil {
			continue
		}
		d := location.DistanceMeters(z.CenterLatitude, z.CenterLongitude, *r.Latitude, *r.Longitude)
		if location.Within(d, z.RadiusMeters) {
			count++
			sum += r.VerificationScore
		}
	}
	avg := DefaultAverageScore
	if count > 0 {
		avg = sum / float64(count)
	}
	return s.zones.UpdateStats(ctx, z.ID, models.ZoneStats{
		CrimeCount:               count,
		AverageVerificationScore: location.RoundTo(avg, 2),
		RiskLevel:                RiskFromStats(count, avg),
		RefreshedAt:              s.now(),
	})
}

// RefreshAllZoneStats refreshes every active zone. A failing zone is logged
// and counted; the rest still refresh. Zones deleted mid-run are skipped.
func (s *ZoneService) RefreshAllZoneStats(ctx context.Context) (RefreshSummary, error) {
	var sum RefreshSummary
	zones, err := s.zones.ListActive(ctx)
	if err != nil {
		return sum, err
	}
	log := logger.FromContext(ctx, s.log)
	for i := range zones {
		z := &zones[i]
		err := s.refresh(ctx, z)
		if errors.Is(err, domain.ErrZoneNotFound) {
			log.Debug("zone deleted during refresh", "zone_id", z.ID)
			continue
		}
		if err != nil {
			sum.Failed++
			metrics.ZoneStatsRefreshTotal.WithLabelValues("error").Inc()
			log.Warn("zone stats refresh failed", "zone_id", z.ID, "err", err)
			continue
		}
		sum.Refreshed++
		metrics.ZoneStatsRefreshTotal.WithLabelValues("ok").Inc()
	}
	if sum.Refreshed > 0 {
		s.changed(ctx, "stats_refreshed", 0)
	}
	log.Info("zone stats refreshed", "refreshed", sum.Refreshed, "failed", sum.Failed)
	return sum, nil
}

// changed drops the cached active list and announces the mutation. zoneID 0
// means many zones changed.
func (s *ZoneService) changed(ctx context.Context, action string, zoneID uint) {
	s.cache.Invalidate(ctx)
	_ = s.events.Publish(events.SubjectZoneChanged, map[string]interface{}{
		"action":  action,
		"zone_id": zoneID,
	})
}
