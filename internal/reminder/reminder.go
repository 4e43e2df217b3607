package reminder

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/events"
	"PortalServer/internal/store"
	"PortalServer/pkg/sl"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// AppointmentReminder raises notifications for scheduled appointments
// about to start.
type AppointmentReminder struct {
	store    *store.Store
	notifier *events.Notifier
	window   time.Duration
}

func NewAppointmentReminder(s *store.Store, n *events.Notifier, window time.Duration) *AppointmentReminder {
	return &AppointmentReminder{
		store:    s,
		notifier: n,
		window:   window,
	}
}

// Start schedules the reminder check every interval.
func (ar *AppointmentReminder) Start(interval time.Duration) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.Local)

	_, err := scheduler.Every(interval).Do(func() {
		n, err := ar.SendReminders(context.Background())
		if err != nil {
			slog.Error("appointment reminder check failed", sl.Error(err))
			return
		}
		if n > 0 {
			slog.Info("appointment reminders sent", slog.Int("count", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("reminder.Start: %w", err)
	}

	scheduler.StartAsync()
	slog.Info("appointment reminder job started", slog.Duration("interval", interval))
	return scheduler, nil
}

// SendReminders notifies patient and staff once per appointment and
// returns how many appointments were handled.
func (ar *AppointmentReminder) SendReminders(ctx context.Context) (int, error) {
	now := ar.store.Now()
	due := ar.store.Appointments.DueForReminder(now, ar.window)

	sent := 0
	for _, apt := range due {
		if _, err := ar.notifier.Notify(ctx, entities.Notification{
			Recipient: apt.PatientID,
			Type:      entities.NotifyAppointment,
			Title:     "Upcoming appointment",
			Message: fmt.Sprintf("Reminder: %s with %s %s at %s. Please arrive 10 minutes early.",
				apt.Type, apt.Provider, dayLabel(apt.Date, now), apt.Time),
		}); err != nil {
			slog.Error("failed to notify patient", slog.String("appointment", apt.ID), sl.Error(err))
			continue
		}
		if _, err := ar.notifier.Notify(ctx, entities.Notification{
			Recipient: entities.RecipientAdmin,
			Type:      entities.NotifyAppointment,
			Title:     "Upcoming appointment",
			Message:   fmt.Sprintf("%s sees %s %s at %s.", apt.PatientName, apt.Provider, dayLabel(apt.Date, now), apt.Time),
		}); err != nil {
			slog.Error("failed to notify staff", slog.String("appointment", apt.ID), sl.Error(err))
		}

		if err := ar.store.Appointments.MarkReminderSent(apt.ID); err != nil {
			return sent, fmt.Errorf("reminder.SendReminders: %w", err)
		}
		sent++
	}
	return sent, nil
}

// dayLabel names an appointment date relative to now.
func dayLabel(date string, now time.Time) string {
	switch date {
	case now.Format(entities.DateLayout):
		return "today"
	case now.AddDate(0, 0, 1).Format(entities.DateLayout):
		return "tomorrow"
	}
	return "on " + date
}
