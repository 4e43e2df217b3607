// Package events fans portal activity out to Kafka for auditing and to
// connected browsers over server-sent events.
package events

import (
	"PortalServer/pkg/sl"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	TypeLogin              = "login"
	TypeRequestCreated     = "protocol_request.created"
	TypeRequestApproved    = "protocol_request.approved"
	TypeRequestRejected    = "protocol_request.rejected"
	TypeCheckInSubmitted   = "checkin.submitted"
	TypeCheckInReviewed    = "checkin.reviewed"
	TypeAppointmentCreated = "appointment.created"
	TypeAppointmentMoved   = "appointment.rescheduled"
	TypeAppointmentCancel  = "appointment.cancelled"
	TypeAppointmentDone    = "appointment.completed"
	TypeDataSourceToggled  = "datasource.toggled"
	TypeNotification       = "notification.created"
	TypePatientCreated     = "patient.created"
	TypePatientUpdated     = "patient.updated"
)

type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     string          `json:"actor"`
	Subject   string          `json:"subject"`
	PatientID string          `json:"patient_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	At        time.Time       `json:"at"`
}

// New builds an event; a payload that fails to marshal is dropped
// rather than failing the caller's action.
func New(typ, actor, subject, patientID string, payload any) Event {
	e := Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Actor:     actor,
		Subject:   subject,
		PatientID: patientID,
		At:        time.Now().UTC(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			e.Payload = raw
		} else {
			slog.Warn("failed to marshal event payload", slog.String("type", typ), sl.Error(err))
		}
	}
	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the structured log. It stands in for
// Kafka when no broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.log.InfoContext(ctx, "event",
		slog.String("id", e.ID),
		slog.String("type", e.Type),
		slog.String("actor", e.Actor),
		slog.String("subject", e.Subject),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
