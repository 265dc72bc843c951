package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/internal/logger"
	"crimewatch/internal/metrics"
	"crimewatch/internal/models"
	"crimewatch/internal/repository"
	"crimewatch/pkg/location"
)

type GeneratorConfig struct {
	Lookback            time.Duration
	MinReports          int
	MaxClusters         int
	RadiusMeters        float64
	DuplicateZoneMeters float64
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Lookback:            90 * 24 * time.Hour,
		MinReports:          3,
		MaxClusters:         20,
		RadiusMeters:        500,
		DuplicateZoneMeters: 500,
	}
}

// clusterKey groups reports on a ~1.1 km grid within one administrative area.
type clusterKey struct {
	Lat      float64
	Lng      float64
	District string
	Division string
}

func (k clusterKey) less(o clusterKey) bool {
	if k.Lat != o.Lat {
		return k.Lat < o.Lat
	}
	if k.Lng != o.Lng {
		return k.Lng < o.Lng
	}
	if k.District != o.District {
		return k.District < o.District
	}
	return k.Division < o.Division
}

// HotspotCluster is a group of nearby approved reports.
type HotspotCluster struct {
	key      clusterKey
	District string
	Division string
	Count    int
	sumLat   float64
	sumLng   float64
	sumScore float64
}

// Centroid is the mean position of the cluster's reports.
func (c *HotspotCluster) Centroid() (float64, float64) {
	return c.sumLat / float64(c.Count), c.sumLng / float64(c.Count)
}

func (c *HotspotCluster) AverageScore() float64 {
	return c.sumScore / float64(c.Count)
}

// Name is "<district> Crime Hotspot".
func (c *HotspotCluster) Name() string {
	if c.District == "" {
		return "Unknown Area Crime Hotspot"
	}
	return c.District + " Crime Hotspot"
}

// BuildClusters buckets reports by rounded coordinates plus district and
// division, drops buckets smaller than minReports and returns the rest
// largest first. Reports without coordinates are ignored.
func BuildClusters(reports []models.CrimeReport, minReports int) []*HotspotCluster {
	byKey := make(map[clusterKey]*HotspotCluster)
	for _, r := range reports {
		if r.Latitude == nil || r.Longitude == nil {
			continue
		}
		k := clusterKey{
			Lat:      location.RoundTo(*r.Latitude, 2),
			Lng:      location.RoundTo(*r.Longitude, 2),
			District: r.District,
			Division: r.Division,
		}
		c, ok := byKey[k]
		if !ok {
			c = &HotspotCluster{key: k, District: r.District, Division: r.Division}
			byKey[k] = c
		}
		c.Count++
		c.sumLat += *r.Latitude
		c.sumLng += *r.Longitude
		c.sumScore += r.VerificationScore
	}
	out := make([]*HotspotCluster, 0, len(byKey))
	for _, c := range byKey {
		if c.Count >= minReports {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].key.less(out[j].key)
	})
	return out
}

// RiskFromClusterSize maps a hotspot's report count to its initial risk.
// Small clusters start at MEDIUM; LOW is never assigned here.
func RiskFromClusterSize(n int) string {
	switch {
	case n >= 10:
		return domain.RiskCritical
	case n >= 7:
		return domain.RiskHigh
	default:
		return domain.RiskMedium
	}
}

// GenerateResult summarizes one auto-generation run.
type GenerateResult struct {
	Created    int                   `json:"created"`
	Skipped    int                   `json:"skipped"`
	Failed     int                   `json:"failed"`
	Clusters   int                   `json:"clusters"`
	TotalPosts int                   `json:"total_posts"`
	Zones      []models.GeofenceZone `json:"zones"`
}

// ZoneGenerator creates AUTO zones from recent crime hotspots.
type ZoneGenerator struct {
	zones   *ZoneService
	reports CrimeReportSource
	cfg     GeneratorConfig
	now     func() time.Time
	log     *slog.Logger
}

func NewZoneGenerator(zones *ZoneService, reports CrimeReportSource, cfg GeneratorConfig) *ZoneGenerator {
	def := DefaultGeneratorConfig()
	if cfg.Lookback <= 0 {
		cfg.Lookback = def.Lookback
	}
	if cfg.MinReports <= 0 {
		cfg.MinReports = def.MinReports
	}
	if cfg.MaxClusters <= 0 {
		cfg.MaxClusters = def.MaxClusters
	}
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = def.RadiusMeters
	}
	if cfg.DuplicateZoneMeters <= 0 {
		cfg.DuplicateZoneMeters = def.DuplicateZoneMeters
	}
	return &ZoneGenerator{
		zones:   zones,
		reports: reports,
		cfg:     cfg,
		now:     time.Now,
		log:     logger.Component("zonegen"),
	}
}

// AutoGenerateZones clusters approved reports from the lookback window and
// creates a zone for each large cluster that is not already covered by an
// existing zone. One failing cluster does not stop the run.
func (g *ZoneGenerator) AutoGenerateZones(ctx context.Context) (*GenerateResult, error) {
	since := g.now().Add(-g.cfg.Lookback)
	reports, err := g.reports.ListApproved(ctx, repository.CrimeReportFilter{Since: &since})
	if err != nil {
		return nil, err
	}
	existing, err := g.zones.zones.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := &GenerateResult{Zones: []models.GeofenceZone{}}
	for _, r := range reports {
		if r.Latitude != nil && r.Longitude != nil {
			res.TotalPosts++
		}
	}
	clusters := BuildClusters(reports, g.cfg.MinReports)
	if len(clusters) > g.cfg.MaxClusters {
		clusters = clusters[:g.cfg.MaxClusters]
	}
	res.Clusters = len(clusters)
	log := logger.FromContext(ctx, g.log)

	for _, c := range clusters {
		lat, lng := c.Centroid()
		if nearZone(existing, lat, lng, g.cfg.DuplicateZoneMeters) {
			res.Skipped++
			metrics.ZonesGeneratedTotal.WithLabelValues("skipped").Inc()
			continue
		}
		z := &models.GeofenceZone{
			Name:                     c.Name(),
			CenterLatitude:           lat,
			CenterLongitude:          lng,
			RadiusMeters:             g.cfg.RadiusMeters,
			RiskLevel:                RiskFromClusterSize(c.Count),
			CrimeCount:               c.Count,
			AverageVerificationScore: location.RoundTo(c.AverageScore(), 2),
			District:                 optional(c.District),
			Division:                 optional(c.Division),
			IsActive:                 true,
			Source:                   domain.ZoneSourceAuto,
		}
		if err := g.zones.insert(ctx, z); err != nil {
			res.Failed++
			metrics.ZonesGeneratedTotal.WithLabelValues("failed").Inc()
			log.Warn("hotspot zone create failed", "name", z.Name, "reports", c.Count, "err", err)
			continue
		}
		res.Created++
		metrics.ZonesGeneratedTotal.WithLabelValues("created").Inc()
		existing = append(existing, *z)
		res.Zones = append(res.Zones, *z)
	}
	log.Info("hotspot generation finished",
		"posts", res.TotalPosts, "clusters", res.Clusters,
		"created", res.Created, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

func nearZone(zones []models.GeofenceZone, lat, lng, meters float64) bool {
	for _, z := range zones {
		if location.DistanceMeters(lat, lng, z.CenterLatitude, z.CenterLongitude) <= meters {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
