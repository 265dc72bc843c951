package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"crimewatch/internal/events"
	"crimewatch/internal/logger"
	"crimewatch/internal/metrics"
)

// PushJob is one persisted notification waiting for side-channel delivery.
type PushJob struct {
	NotificationID uint                   `json:"notification_id"`
	UserID         uint                   `json:"user_id"`
	Type           string                 `json:"type"`
	Title          string                 `json:"title"`
	Body           string                 `json:"body"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// PushChannel delivers a job over one transport (FCM, websocket, NATS).
// Deliver reports whether the job reached the user; a channel with nothing to
// send to (no socket, no device token) returns false, nil.
type PushChannel interface {
	Name() string
	Deliver(ctx context.Context, job PushJob) (bool, error)
}

// PushMarker records that at least one channel reached the user.
type PushMarker interface {
	MarkPushed(ctx context.Context, id uint) error
}

// PushDispatcher fans jobs out to every channel from a fixed worker pool.
// The queue is bounded; Enqueue never blocks the caller.
type PushDispatcher struct {
	queue    chan PushJob
	channels []PushChannel
	marker   PushMarker
	workers  int
	timeout  time.Duration
	log      *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewPushDispatcher(workers, queueSize int, timeout time.Duration, marker PushMarker, channels ...PushChannel) *PushDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PushDispatcher{
		queue:    make(chan PushJob, queueSize),
		channels: channels,
		marker:   marker,
		workers:  workers,
		timeout:  timeout,
		log:      logger.Component("push"),
	}
}

// Start launches the workers.
func (d *PushDispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

// Enqueue queues job, dropping it when the queue is full or the dispatcher is closed.
func (d *PushDispatcher) Enqueue(job PushJob) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.PushQueueDroppedTotal.Inc()
		return false
	}
	select {
	case d.queue <- job:
		return true
	default:
		metrics.PushQueueDroppedTotal.Inc()
		d.log.Warn("push queue full, dropping job", "notification_id", job.NotificationID, "user_id", job.UserID)
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to drain.
func (d *PushDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *PushDispatcher) run() {
	defer d.wg.Done()
	for job := range d.queue {
		d.deliver(job)
	}
}

func (d *PushDispatcher) deliver(job PushJob) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	delivered := false
	for _, ch := range d.channels {
		sent, err := ch.Deliver(ctx, job)
		switch {
		case err != nil:
			metrics.PushDeliveriesTotal.WithLabelValues(ch.Name(), "error").Inc()
			d.log.Warn("push delivery failed", "channel", ch.Name(), "notification_id", job.NotificationID, "err", err)
		case sent:
			metrics.PushDeliveriesTotal.WithLabelValues(ch.Name(), "ok").Inc()
			delivered = true
		default:
			metrics.PushDeliveriesTotal.WithLabelValues(ch.Name(), "skipped").Inc()
		}
	}
	if delivered && d.marker != nil && job.NotificationID != 0 {
		if err := d.marker.MarkPushed(ctx, job.NotificationID); err != nil {
			d.log.Warn("mark pushed failed", "notification_id", job.NotificationID, "err", err)
		}
	}
}

// UserBroadcaster sends a message to a connected user and returns how many
// connections took it. *ws.AlertHub implements it.
type UserBroadcaster interface {
	BroadcastToUser(userID uint, msg interface{}) int
}

// HubChannel pushes jobs to the user's open websocket connections.
type HubChannel struct {
	Hub UserBroadcaster
}

func (HubChannel) Name() string { return "websocket" }

func (c HubChannel) Deliver(_ context.Context, job PushJob) (bool, error) {
	n := c.Hub.BroadcastToUser(job.UserID, map[string]interface{}{
		"type":         "notification",
		"notification": job,
	})
	return n > 0, nil
}

// EventChannel publishes jobs as geofence alert events for downstream
// consumers. It never counts as reaching the user.
type EventChannel struct {
	Events EventPublisher
}

func (EventChannel) Name() string { return "nats" }

func (c EventChannel) Deliver(_ context.Context, job PushJob) (bool, error) {
	return false, c.Events.Publish(events.SubjectGeofenceAlert, job)
}
