package entities

import "time"

type NotificationType string

const (
	NotifyAppointment NotificationType = "appointment"
	NotifyProtocol    NotificationType = "protocol"
	NotifyCheckIn     NotificationType = "checkin"
	NotifyBiomarker   NotificationType = "biomarker"
	NotifySystem      NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifyAppointment, NotifyProtocol, NotifyCheckIn, NotifyBiomarker, NotifySystem:
		return true
	}
	return false
}

// RecipientAdmin addresses clinic staff; any other recipient is a
// patient id.
const RecipientAdmin = "admin"

type Notification struct {
	ID        string           `json:"id" yaml:"id"`
	Recipient string           `json:"recipient" yaml:"recipient"`
	Type      NotificationType `json:"type" yaml:"type"`
	Title     string           `json:"title" yaml:"title"`
	Message   string           `json:"message" yaml:"message"`
	IsRead    bool             `json:"is_read" yaml:"is_read"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
}

func (n Notification) GetID() string { return n.ID }
