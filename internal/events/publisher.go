// Package events publishes geofence domain events to NATS for downstream consumers.
package events

import (
	"encoding/json"
	"time"

	"crimewatch/config"
	"crimewatch/internal/logger"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectZoneChanged   = "zone.changed"
	SubjectZoneEntered   = "location.zone_entered"
	SubjectGeofenceAlert = "geofence.alert"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher sends events on "<prefix>.<subject>". A nil *Publisher drops everything.
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect dials NATS. It returns nil, nil when no URL is configured.
func Connect(cfg config.NATSConfig) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	log := logger.Component("nats")
	options := []nats.Option{
		nats.Name("crimewatch"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("connection closed")
		}),
	}
	return nats.Connect(cfg.URL, options...)
}

func NewPublisher(conn *nats.Conn, prefix string) *Publisher {
	if conn == nil {
		return nil
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Publish is best-effort: failures are logged and returned but callers may ignore them.
func (p *Publisher) Publish(subject string, data interface{}) error {
	if p == nil {
		return nil
	}
	full := subject
	if p.prefix != "" {
		full = p.prefix + "." + subject
	}
	payload, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Type:       subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return err
	}
	if err := p.conn.Publish(full, payload); err != nil {
		logger.Component("nats").Warn("publish failed", "subject", full, "err", err)
		return err
	}
	return nil
}
