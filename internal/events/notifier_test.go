package events

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/store"
	"context"
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingPublisher) Publish(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func TestNotifierStoresBroadcastsAndEmits(t *testing.T) {
	s := store.New(nil)
	b := NewBroadcaster(DefaultClientBuffer)
	pub := &recordingPublisher{}
	n := NewNotifier(s, b, pub)

	stream := b.Register("p1")
	defer b.Unregister(stream)

	saved, err := n.Notify(context.Background(), entities.Notification{
		Recipient: "p1",
		Type:      entities.NotifyAppointment,
		Title:     "Reminder",
		Message:   "Appointment at 11:00",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if saved.ID == "" || s.Notifications.UnreadCount("p1") != 1 {
		t.Errorf("notification not stored: %+v", saved)
	}

	select {
	case msg := <-stream:
		if msg != RefreshMessage {
			t.Errorf("stream msg = %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no refresh pushed")
	}

	if len(pub.events) != 1 || pub.events[0].Type != TypeNotification || pub.events[0].PatientID != "p1" {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestNotifierRejectsBadType(t *testing.T) {
	n := NewNotifier(store.New(nil), NewBroadcaster(0), &recordingPublisher{})
	if _, err := n.Notify(context.Background(), entities.Notification{Recipient: "p1", Type: "junk"}); err == nil {
		t.Fatal("expected error for invalid type")
	}
}
