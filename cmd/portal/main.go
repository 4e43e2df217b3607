package main

import (
	"PortalServer/internal/config"
	"PortalServer/internal/events"
	"PortalServer/internal/reminder"
	"PortalServer/internal/seed"
	"PortalServer/internal/server"
	"PortalServer/internal/server/handlers"
	"PortalServer/internal/transcribe"
	"PortalServer/pkg/sl"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file (defaults to $CONFIG_PATH)")
	addr := pflag.String("addr", "", "listen address, overrides http.port")
	envFile := pflag.String("env-file", ".env", "optional env file with secrets")
	pflag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", sl.Error(err))
		os.Exit(1)
	}
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.Init(*configPath)
	if err != nil {
		slog.Error("failed to init config", sl.Error(err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTP.Port = *addr
	}

	log := sl.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		slog.Error("portal stopped with error", sl.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	s, a, err := seed.Bootstrap(cfg.Auth.Secret, cfg.Auth.TokenTTL, nil)
	if err != nil {
		return err
	}
	slog.Info("demo data loaded", slog.Int("patients", s.Patients.Len()))

	var publisher events.Publisher
	if cfg.Kafka.Host != "" {
		publisher, err = events.NewKafkaPublisher(strings.Split(cfg.Kafka.Host, ","), cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		slog.Info("publishing events to kafka", slog.String("topic", cfg.Kafka.Topic))
	} else {
		publisher = events.NewLogPublisher(log)
		slog.Warn("KAFKA_HOST not set, events go to the log only")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("failed to close event publisher", sl.Error(err))
		}
	}()

	broadcaster := events.NewBroadcaster(events.DefaultClientBuffer)
	notifier := events.NewNotifier(s, broadcaster, publisher)

	if cfg.Transcribe.APIKey == "" {
		slog.Warn("TRANSCRIBE_API_KEY not set, voice check-ins will fail to transcribe")
	}
	client := transcribe.NewClient(cfg.Transcribe.URL, cfg.Transcribe.APIKey, cfg.Transcribe.Model, cfg.Transcribe.Timeout)
	sessions := transcribe.NewSessions(client, nil)

	scheduler, err := reminder.NewAppointmentReminder(s, notifier, cfg.Reminder.Window).Start(cfg.Reminder.Interval)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	h := handlers.New(s, a, sessions, notifier, broadcaster, handlers.Options{
		ShellPath:    filepath.Join(cfg.HTTP.WebDir, "index.html"),
		SecureCookie: !cfg.IsDevelopment(),
	})
	serv := server.New(cfg, a, h)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serv.Run(ctx)
}
