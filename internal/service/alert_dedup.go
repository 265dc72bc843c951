package service

import (
	"context"
	"time"
)

// DefaultAlertWindow is how long a sent alert suppresses repeats for the same
// user and zone.
const DefaultAlertWindow = 60 * time.Minute

// AlertDeduplicator decides whether a geofence alert may be sent. It reads
// the location history, so two concurrent pings from the same user can both
// pass before either row is written; at most one duplicate results.
type AlertDeduplicator struct {
	history HistoryStore
	window  time.Duration
	now     func() time.Time
}

func NewAlertDeduplicator(history HistoryStore, window time.Duration) *AlertDeduplicator {
	if window <= 0 {
		window = DefaultAlertWindow
	}
	return &AlertDeduplicator{history: history, window: window, now: time.Now}
}

// ShouldSendAlert is false when the user already got an alert for zoneID
// within the window.
func (d *AlertDeduplicator) ShouldSendAlert(ctx context.Context, userID, zoneID uint) (bool, error) {
	recent, err := d.history.HasRecentAlert(ctx, userID, zoneID, d.now().Add(-d.window))
	if err != nil {
		return false, err
	}
	return !recent, nil
}
