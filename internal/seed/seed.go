// Package seed loads zones and sample crime reports from a YAML file.
package seed

import (
	"context"
	"fmt"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/internal/logger"
	"crimewatch/internal/models"
	"crimewatch/internal/service"

	"github.com/goccy/go-yaml"
)

// File is the seed document.
//
//	zones:
//	  - name: Motijheel
//	    lat: 23.7330
//	    lng: 90.4172
//	    radius: 400
//	    risk: HIGH
//	reports:
//	  - title: Phone snatching
//	    lat: 23.7335
//	    lng: 90.4170
//	    score: 72
//	    district: Dhaka
//	    days_ago: 3
type File struct {
	Zones   []Zone   `yaml:"zones"`
	Reports []Report `yaml:"reports"`
}

type Zone struct {
	Name     string  `yaml:"name"`
	Lat      float64 `yaml:"lat"`
	Lng      float64 `yaml:"lng"`
	Radius   float64 `yaml:"radius"`
	Risk     string  `yaml:"risk"`
	District string  `yaml:"district"`
	Division string  `yaml:"division"`
}

type Report struct {
	Title    string  `yaml:"title"`
	Lat      float64 `yaml:"lat"`
	Lng      float64 `yaml:"lng"`
	Score    float64 `yaml:"score"`
	Status   string  `yaml:"status"`
	District string  `yaml:"district"`
	Division string  `yaml:"division"`
	DaysAgo  int     `yaml:"days_ago"`
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, z := range f.Zones {
		if z.Name == "" || z.Radius <= 0 || !domain.ValidCoordinates(z.Lat, z.Lng) {
			return nil, fmt.Errorf("zone %d (%q): %w", i, z.Name, domain.ErrInvalidZone)
		}
	}
	for i, r := range f.Reports {
		if !domain.ValidCoordinates(r.Lat, r.Lng) {
			return nil, fmt.Errorf("report %d (%q): %w", i, r.Title, domain.ErrInvalidCoordinates)
		}
		if r.Status == "" {
			f.Reports[i].Status = domain.PostStatusApproved
		}
	}
	return &f, nil
}

// ZoneCreator is implemented by *service.ZoneService.
type ZoneCreator interface {
	CreateZone(ctx context.Context, in service.ZoneInput) (*models.GeofenceZone, error)
	RefreshAllZoneStats(ctx context.Context) (service.RefreshSummary, error)
}

// ReportWriter is implemented by *repository.CrimeReportRepository.
type ReportWriter interface {
	Create(ctx context.Context, r *models.CrimeReport) error
}

type Result struct {
	Zones   int
	Reports int
	Stats   service.RefreshSummary
}

// Apply writes reports first so the final stats refresh sees them.
func Apply(ctx context.Context, f *File, zones ZoneCreator, reports ReportWriter, now time.Time) (Result, error) {
	var res Result
	log := logger.Component("seed")
	for _, r := range f.Reports {
		lat, lng := r.Lat, r.Lng
		cr := &models.CrimeReport{
			Title:             r.Title,
			Latitude:          &lat,
			Longitude:         &lng,
			VerificationScore: r.Score,
			Status:            r.Status,
			District:          r.District,
			Division:          r.Division,
			CrimeDate:         now.AddDate(0, 0, -r.DaysAgo),
		}
		if err := reports.Create(ctx, cr); err != nil {
			return res, fmt.Errorf("report %q: %w", r.Title, err)
		}
		res.Reports++
	}
	for _, z := range f.Zones {
		in := service.ZoneInput{
			Name:            z.Name,
			CenterLatitude:  z.Lat,
			CenterLongitude: z.Lng,
			RadiusMeters:    z.Radius,
			RiskLevel:       z.Risk,
		}
		if z.District != "" {
			d := z.District
			in.District = &d
		}
		if z.Division != "" {
			d := z.Division
			in.Division = &d
		}
		created, err := zones.CreateZone(ctx, in)
		if err != nil {
			return res, fmt.Errorf("zone %q: %w", z.Name, err)
		}
		log.Info("zone created", "id", created.ID, "name", created.Name)
		res.Zones++
	}
	if res.Zones > 0 {
		stats, err := zones.RefreshAllZoneStats(ctx)
		if err != nil {
			return res, err
		}
		res.Stats = stats
	}
	return res, nil
}
