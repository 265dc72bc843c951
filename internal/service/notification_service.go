package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"crimewatch/internal/domain"
	"crimewatch/internal/models"
)

// PushQueue accepts push jobs for asynchronous delivery. *PushDispatcher implements it.
type PushQueue interface {
	Enqueue(job PushJob) bool
}

type NotificationService struct {
	repo NotificationStore
	push PushQueue
}

// NewNotificationService wires the store and an optional push queue.
func NewNotificationService(repo NotificationStore, push PushQueue) *NotificationService {
	return &NotificationService{repo: repo, push: push}
}

// Notify persists a notification and queues it for push delivery. Push is
// best-effort; only the store error is returned.
func (s *NotificationService) Notify(ctx context.Context, userID uint, notifType, title, body string, data map[string]interface{}) (*models.Notification, error) {
	var dataJSON string
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	if s.push != nil {
		s.push.Enqueue(PushJob{
			NotificationID: n.ID,
			UserID:         userID,
			Type:           notifType,
			Title:          title,
			Body:           body,
			Data:           data,
		})
	}
	return n, nil
}

// GeofenceWarningBody is the user-facing text for entering a zone.
func GeofenceWarningBody(zoneName, riskLevel string) string {
	return fmt.Sprintf("You have entered %s, a %s risk area. Stay alert and take necessary precautions.",
		zoneName, strings.ToLower(riskLevel))
}

func (s *NotificationService) CreateGeofenceWarning(ctx context.Context, userID uint, zone *models.GeofenceZone) (*models.Notification, error) {
	return s.Notify(ctx, userID, domain.NotificationGeofenceWarning, "Geofence Warning",
		GeofenceWarningBody(zone.Name, zone.RiskLevel),
		map[string]interface{}{
			"zone_id":    zone.ID,
			"zone_name":  zone.Name,
			"risk_level": zone.RiskLevel,
		})
}
