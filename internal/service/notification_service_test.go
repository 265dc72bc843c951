package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"crimewatch/internal/domain"
	"crimewatch/internal/events"
	"crimewatch/internal/models"
)

type recordingQueue struct {
	jobs []PushJob
}

func (q *recordingQueue) Enqueue(job PushJob) bool {
	q.jobs = append(q.jobs, job)
	return true
}

func TestCreateGeofenceWarning(t *testing.T) {
	store := &fakeNotificationStore{}
	q := &recordingQueue{}
	svc := NewNotificationService(store, q)
	z := zone(7, "Motijheel", 23.73, 90.41, 400, domain.RiskCritical, 22)

	n, err := svc.CreateGeofenceWarning(context.Background(), 3, &z)
	if err != nil {
		t.Fatalf("CreateGeofenceWarning: %v", err)
	}
	if n.Type != domain.NotificationGeofenceWarning || n.Title != "Geofence Warning" || n.UserID != 3 {
		t.Errorf("notification = %+v", n)
	}
	want := "You have entered Motijheel, a critical risk area. Stay alert and take necessary precautions."
	if n.Body != want {
		t.Errorf("body = %q, want %q", n.Body, want)
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(n.Data), &data); err != nil {
		t.Fatalf("data is not JSON: %v", err)
	}
	if data["zone_id"] != float64(7) || data["zone_name"] != "Motijheel" || data["risk_level"] != "CRITICAL" {
		t.Errorf("data = %v", data)
	}
	if len(store.rows) != 1 {
		t.Error("notification not persisted")
	}
	if len(q.jobs) != 1 || q.jobs[0].NotificationID != n.ID || q.jobs[0].UserID != 3 {
		t.Errorf("push jobs = %+v", q.jobs)
	}
}

func TestNotify_StoreErrorSkipsPush(t *testing.T) {
	q := &recordingQueue{}
	svc := NewNotificationService(&fakeNotificationStore{createErr: errBoom}, q)
	if _, err := svc.Notify(context.Background(), 1, domain.NotificationSystem, "t", "b", nil); !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want boom", err)
	}
	if len(q.jobs) != 0 {
		t.Error("unsaved notification must not be pushed")
	}
}

func TestNotify_NilQueue(t *testing.T) {
	svc := NewNotificationService(&fakeNotificationStore{}, nil)
	n, err := svc.Notify(context.Background(), 1, domain.NotificationSystem, "t", "b", nil)
	if err != nil || n.Data != "" {
		t.Errorf("Notify = %+v, %v", n, err)
	}
}

type fakeChannel struct {
	name string
	err  error
	skip bool

	mu   sync.Mutex
	jobs []PushJob
	gate chan struct{}
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Deliver(_ context.Context, job PushJob) (bool, error) {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = append(c.jobs, job)
	return c.err == nil && !c.skip, c.err
}

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs)
}

func TestPushDispatcher_FansOutAndMarksPushed(t *testing.T) {
	store := &fakeNotificationStore{}
	ok := &fakeChannel{name: "ok"}
	bad := &fakeChannel{name: "bad", err: errBoom}
	d := NewPushDispatcher(2, 8, time.Second, store, bad, ok)
	d.Start()
	d.Enqueue(PushJob{NotificationID: 1, UserID: 9})
	d.Enqueue(PushJob{NotificationID: 2, UserID: 9})
	d.Close()

	if ok.count() != 2 || bad.count() != 2 {
		t.Errorf("deliveries ok=%d bad=%d, want 2 each", ok.count(), bad.count())
	}
	if got := store.pushedIDs(); len(got) != 2 {
		t.Errorf("marked pushed %v, want both", got)
	}
}

func TestPushDispatcher_AllChannelsFailing(t *testing.T) {
	store := &fakeNotificationStore{}
	d := NewPushDispatcher(1, 1, time.Second, store, &fakeChannel{name: "bad", err: errBoom})
	d.Start()
	d.Enqueue(PushJob{NotificationID: 1})
	d.Close()
	if len(store.pushedIDs()) != 0 {
		t.Error("undelivered notification must not be marked pushed")
	}
}

func TestPushDispatcher_DropsWhenFull(t *testing.T) {
	gate := make(chan struct{})
	ch := &fakeChannel{name: "slow", gate: gate}
	d := NewPushDispatcher(1, 1, time.Second, nil, ch)
	d.Start()

	accepted := 0
	for i := 0; i < 5; i++ {
		if d.Enqueue(PushJob{NotificationID: uint(i + 1)}) {
			accepted++
		}
	}
	// one job in the worker, one in the queue at most
	if accepted > 2 || accepted == 0 {
		t.Errorf("accepted %d jobs with a queue of 1", accepted)
	}
	close(gate)
	d.Close()
	if ch.count() != accepted {
		t.Errorf("delivered %d, accepted %d", ch.count(), accepted)
	}
	if d.Enqueue(PushJob{NotificationID: 99}) {
		t.Error("closed dispatcher must reject jobs")
	}
}

type fakeHub struct {
	mu    sync.Mutex
	conns int // connections per user
	users []uint
	msgs  []interface{}
}

func (h *fakeHub) BroadcastToUser(userID uint, msg interface{}) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users = append(h.users, userID)
	h.msgs = append(h.msgs, msg)
	return h.conns
}

func TestHubAndEventChannels(t *testing.T) {
	hub := &fakeHub{conns: 2}
	ev := &fakeEvents{}
	job := PushJob{NotificationID: 4, UserID: 12, Type: domain.NotificationGeofenceWarning}

	sent, err := (HubChannel{Hub: hub}).Deliver(context.Background(), job)
	if err != nil || !sent {
		t.Fatalf("hub Deliver = %v, %v", sent, err)
	}
	if len(hub.users) != 1 || hub.users[0] != 12 {
		t.Errorf("hub users = %v", hub.users)
	}
	sent, err = (EventChannel{Events: ev}).Deliver(context.Background(), job)
	if err != nil || sent {
		t.Fatalf("event Deliver = %v, %v; an event is not a user delivery", sent, err)
	}
	if s := ev.subjects(); len(s) != 1 || s[0] != events.SubjectGeofenceAlert {
		t.Errorf("subjects = %v", s)
	}
}

func TestHubChannel_NoConnections(t *testing.T) {
	sent, err := (HubChannel{Hub: &fakeHub{}}).Deliver(context.Background(), PushJob{UserID: 7})
	if err != nil || sent {
		t.Errorf("Deliver = %v, %v, want not sent", sent, err)
	}
}

func TestFCMChannel_SkipsWhenDisabled(t *testing.T) {
	users := newFakeUsers(1)
	users.users[1] = &models.User{ID: 1, FCMToken: "tok"}
	sent, err := (FCMChannel{Users: users}).Deliver(context.Background(), PushJob{UserID: 1})
	if err != nil || sent {
		t.Errorf("nil FCM: Deliver = %v, %v, want skipped", sent, err)
	}
}

func TestPushDispatcher_NothingReachedLeavesUnpushed(t *testing.T) {
	store := &fakeNotificationStore{}
	users := newFakeUsers(7)
	ev := &fakeEvents{}
	d := NewPushDispatcher(1, 4, time.Second, store,
		HubChannel{Hub: &fakeHub{}},
		FCMChannel{Users: users},
		EventChannel{Events: ev},
	)
	d.Start()
	d.Enqueue(PushJob{NotificationID: 42, UserID: 7})
	d.Close()

	if got := store.pushedIDs(); len(got) != 0 {
		t.Errorf("marked pushed %v with no socket and FCM disabled", got)
	}
	if len(ev.subjects()) != 1 {
		t.Error("alert event still expected")
	}
}

func TestPushDispatcher_SkippedAndSentChannels(t *testing.T) {
	store := &fakeNotificationStore{}
	skipped := &fakeChannel{name: "fcm", skip: true}
	sent := &fakeChannel{name: "websocket"}
	d := NewPushDispatcher(1, 4, time.Second, store, skipped, sent)
	d.Start()
	d.Enqueue(PushJob{NotificationID: 5, UserID: 1})
	d.Close()
	if got := store.pushedIDs(); len(got) != 1 || got[0] != 5 {
		t.Errorf("marked pushed %v, want [5]", got)
	}
}

func TestStringifyData(t *testing.T) {
	got := StringifyData("GEOFENCE_WARNING", map[string]interface{}{
		"zone_id":   uint(5),
		"zone_name": "Uttara",
		"score":     42.5,
		"tags":      []string{"a"},
	})
	want := map[string]string{
		"type":      "GEOFENCE_WARNING",
		"zone_id":   "5",
		"zone_name": "Uttara",
		"score":     "42.5",
		"tags":      `["a"]`,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
