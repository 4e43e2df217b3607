package store

import (
	"PortalServer/internal/entities"
	"fmt"
	"time"
)

type Notifications struct {
	c   *Collection[entities.Notification]
	now func() time.Time
}

func (s *Notifications) Add(n entities.Notification) (entities.Notification, error) {
	op := "Notifications.Add"
	if n.Type == "" {
		n.Type = entities.NotifySystem
	}
	if !n.Type.Valid() {
		return entities.Notification{}, fmt.Errorf("%s: type %q: %w", op, n.Type, ErrInvalidStatus)
	}
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if err := s.c.Insert(n); err != nil {
		return entities.Notification{}, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *Notifications) ForRecipient(recipient string, unreadOnly bool) []entities.Notification {
	return s.c.Filter(func(n entities.Notification) bool {
		return n.Recipient == recipient && (!unreadOnly || !n.IsRead)
	})
}

func (s *Notifications) UnreadCount(recipient string) int {
	return len(s.ForRecipient(recipient, true))
}

func (s *Notifications) MarkRead(id, recipient string) (entities.Notification, error) {
	n, err := s.c.Update(id, func(n *entities.Notification) error {
		if n.Recipient != recipient {
			return fmt.Errorf("id %q: %w", id, ErrNotFound)
		}
		n.IsRead = true
		return nil
	})
	if err != nil {
		return entities.Notification{}, fmt.Errorf("Notifications.MarkRead: %w", err)
	}
	return n, nil
}

// MarkAllRead returns the number of notifications that flipped.
func (s *Notifications) MarkAllRead(recipient string) int {
	return s.c.UpdateWhere(
		func(n entities.Notification) bool { return n.Recipient == recipient && !n.IsRead },
		func(n *entities.Notification) { n.IsRead = true },
	)
}

func (s *Notifications) Delete(id, recipient string) error {
	n, err := s.c.Get(id)
	if err != nil {
		return fmt.Errorf("Notifications.Delete: %w", err)
	}
	if n.Recipient != recipient {
		return fmt.Errorf("Notifications.Delete: id %q: %w", id, ErrNotFound)
	}
	if err := s.c.Remove(id); err != nil {
		return fmt.Errorf("Notifications.Delete: %w", err)
	}
	return nil
}
