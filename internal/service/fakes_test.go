package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/internal/models"
	"crimewatch/internal/repository"
)

var errBoom = errors.New("boom")

type fakeZoneStore struct {
	mu         sync.Mutex
	zones      map[uint]*models.GeofenceZone
	nextID     uint
	createErr  func(z *models.GeofenceZone) error
	updateErr  map[uint]error
	listErr    error
	listActive int
	// runs once inside the next ListActive, after the rows are read
	onListActive func()
}

func newFakeZoneStore(zones ...models.GeofenceZone) *fakeZoneStore {
	s := &fakeZoneStore{zones: map[uint]*models.GeofenceZone{}, updateErr: map[uint]error{}}
	for i := range zones {
		z := zones[i]
		if z.ID == 0 {
			s.nextID++
			z.ID = s.nextID
		} else if z.ID > s.nextID {
			s.nextID = z.ID
		}
		s.zones[z.ID] = &z
	}
	return s
}

func (s *fakeZoneStore) Create(_ context.Context, z *models.GeofenceZone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		if err := s.createErr(z); err != nil {
			return err
		}
	}
	s.nextID++
	z.ID = s.nextID
	cp := *z
	s.zones[z.ID] = &cp
	return nil
}

func (s *fakeZoneStore) GetByID(_ context.Context, id uint) (*models.GeofenceZone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[id]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	cp := *z
	return &cp, nil
}

func (s *fakeZoneStore) list(activeOnly bool) []models.GeofenceZone {
	out := []models.GeofenceZone{}
	for _, z := range s.zones {
		if activeOnly && !z.IsActive {
			continue
		}
		out = append(out, *z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeZoneStore) ListActive(context.Context) ([]models.GeofenceZone, error) {
	s.mu.Lock()
	s.listActive++
	out, err := s.list(true), s.listErr
	hook := s.onListActive
	s.onListActive = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *fakeZoneStore) ListAll(context.Context) ([]models.GeofenceZone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list(false), nil
}

func (s *fakeZoneStore) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.updateErr[id]; err != nil {
		return err
	}
	z, ok := s.zones[id]
	if !ok {
		return domain.ErrZoneNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			z.Name = v.(string)
		case "center_latitude":
			z.CenterLatitude = v.(float64)
		case "center_longitude":
			z.CenterLongitude = v.(float64)
		case "radius_meters":
			z.RadiusMeters = v.(float64)
		case "risk_level":
			z.RiskLevel = v.(string)
		case "district":
			d := v.(string)
			z.District = &d
		case "division":
			d := v.(string)
			z.Division = &d
		case "is_active":
			z.IsActive = v.(bool)
		case "crime_count":
			z.CrimeCount = v.(int)
		case "average_verification_score":
			z.AverageVerificationScore = v.(float64)
		case "stats_refreshed_at":
			at := v.(time.Time)
			z.StatsRefreshedAt = &at
		default:
			return fmt.Errorf("fake zone store: unknown column %q", k)
		}
	}
	return nil
}

func (s *fakeZoneStore) UpdateStats(ctx context.Context, id uint, st models.ZoneStats) error {
	return s.UpdateFields(ctx, id, map[string]interface{}{
		"crime_count":                st.CrimeCount,
		"average_verification_score": st.AverageVerificationScore,
		"risk_level":                 st.RiskLevel,
		"stats_refreshed_at":         st.RefreshedAt,
	})
}

func (s *fakeZoneStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zones[id]; !ok {
		return domain.ErrZoneNotFound
	}
	delete(s.zones, id)
	return nil
}

type fakeReports struct {
	reports []models.CrimeReport
	filters []repository.CrimeReportFilter
	err     error
	// runs on every ListApproved, standing in for writes that land mid-refresh
	during func()
}

func (f *fakeReports) ListApproved(_ context.Context, flt repository.CrimeReportFilter) ([]models.CrimeReport, error) {
	f.filters = append(f.filters, flt)
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := []models.CrimeReport{}
	for _, r := range f.reports {
		if r.Status != domain.PostStatusApproved || r.IsDeleted || r.Latitude == nil || r.Longitude == nil {
			continue
		}
		if flt.Since != nil && r.CrimeDate.Before(*flt.Since) {
			continue
		}
		if b := flt.Box; b != nil {
			if *r.Latitude < b.MinLat || *r.Latitude > b.MaxLat {
				continue
			}
			if !b.WrapsLongitude() && (*r.Longitude < b.MinLng || *r.Longitude > b.MaxLng) {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func report(lat, lng, score float64, district, division string, at time.Time) models.CrimeReport {
	return models.CrimeReport{
		Latitude:          &lat,
		Longitude:         &lng,
		VerificationScore: score,
		Status:            domain.PostStatusApproved,
		District:          district,
		Division:          division,
		CrimeDate:         at,
	}
}

type fakeHistory struct {
	mu        sync.Mutex
	rows      []models.UserLocationHistory
	createErr error
	alertErr  error
	lastLimit int
}

func (h *fakeHistory) Create(_ context.Context, row *models.UserLocationHistory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return h.createErr
	}
	row.ID = uint(len(h.rows) + 1)
	h.rows = append(h.rows, *row)
	return nil
}

func (h *fakeHistory) HasRecentAlert(_ context.Context, userID, zoneID uint, since time.Time) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.alertErr != nil {
		return false, h.alertErr
	}
	for _, r := range h.rows {
		if r.UserID == userID && r.GeofenceZoneID != nil && *r.GeofenceZoneID == zoneID &&
			r.NotificationSent && r.Timestamp.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (h *fakeHistory) ListByUserID(_ context.Context, userID uint, limit int) ([]models.LocationHistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastLimit = limit
	out := []models.LocationHistoryEntry{}
	for i := len(h.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if h.rows[i].UserID == userID {
			out = append(out, models.LocationHistoryEntry{UserLocationHistory: h.rows[i]})
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[uint]*models.User
	err   error
}

func newFakeUsers(ids ...uint) *fakeUsers {
	f := &fakeUsers{users: map[uint]*models.User{}}
	for _, id := range ids {
		f.users[id] = &models.User{ID: id, Role: domain.RoleUser}
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) Exists(_ context.Context, id uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.users[id]
	return ok, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []uint // zone ids
	err   error
}

func (f *fakeNotifier) CreateGeofenceWarning(_ context.Context, userID uint, zone *models.GeofenceZone) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, zone.ID)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Notification{ID: uint(len(f.calls)), UserID: userID}, nil
}

type fakeCache struct {
	zones       []models.GeofenceZone
	warm        bool
	gen         int
	invalidated int
	staleWrites int
}

func (c *fakeCache) GetActive(context.Context) ([]models.GeofenceZone, string, bool) {
	return c.zones, strconv.Itoa(c.gen), c.warm
}

func (c *fakeCache) SetActive(_ context.Context, version string, zones []models.GeofenceZone) {
	if version != strconv.Itoa(c.gen) {
		c.staleWrites++
		return
	}
	c.zones, c.warm = zones, true
}

func (c *fakeCache) Invalidate(context.Context) {
	c.zones, c.warm = nil, false
	c.gen++
	c.invalidated++
}

type published struct {
	subject string
	data    interface{}
}

type fakeEvents struct {
	mu  sync.Mutex
	out []published
	err error
}

func (f *fakeEvents) Publish(subject string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, published{subject, data})
	return f.err
}

func (f *fakeEvents) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := make([]string, len(f.out))
	for i, p := range f.out {
		s[i] = p.subject
	}
	return s
}

type fakeNotificationStore struct {
	mu        sync.Mutex
	rows      []models.Notification
	pushed    []uint
	createErr error
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationStore) MarkPushed(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, id)
	return nil
}

func (f *fakeNotificationStore) pushedIDs() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.pushed...)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func zone(id uint, name string, lat, lng, radius float64, risk string, crimes int) models.GeofenceZone {
	return models.GeofenceZone{
		ID:              id,
		Name:            name,
		CenterLatitude:  lat,
		CenterLongitude: lng,
		RadiusMeters:    radius,
		RiskLevel:       risk,
		CrimeCount:      crimes,
		IsActive:        true,
		Source:          domain.ZoneSourceManual,
	}
}
