package events

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/store"
	"PortalServer/pkg/sl"
	"context"
	"fmt"
	"log/slog"
)

const RefreshMessage = "refresh"

// Notifier records a notification, wakes the recipient's open streams
// and emits the matching event.
type Notifier struct {
	store       *store.Store
	broadcaster *Broadcaster
	publisher   Publisher
}

func NewNotifier(s *store.Store, b *Broadcaster, p Publisher) *Notifier {
	return &Notifier{store: s, broadcaster: b, publisher: p}
}

func (n *Notifier) Notify(ctx context.Context, note entities.Notification) (entities.Notification, error) {
	saved, err := n.store.Notifications.Add(note)
	if err != nil {
		return entities.Notification{}, fmt.Errorf("Notifier.Notify: %w", err)
	}
	n.broadcaster.Broadcast(saved.Recipient, RefreshMessage)

	patientID := ""
	if saved.Recipient != entities.RecipientAdmin {
		patientID = saved.Recipient
	}
	n.Emit(ctx, New(TypeNotification, "system", saved.ID, patientID, saved))
	return saved, nil
}

// Emit publishes an event; delivery failures are logged, not returned,
// since the action that caused them has already happened.
func (n *Notifier) Emit(ctx context.Context, e Event) {
	if err := n.publisher.Publish(ctx, e); err != nil {
		slog.Error("failed to publish event", slog.String("type", e.Type), sl.Error(err))
	}
}
