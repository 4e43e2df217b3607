package main

import (
	"PortalServer/internal/audit"
	"PortalServer/internal/config"
	"PortalServer/pkg/sl"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file (defaults to $CONFIG_PATH)")
	envFile := pflag.String("env-file", ".env", "optional env file with secrets")
	pflag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", sl.Error(err))
		os.Exit(1)
	}
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.InitAudit(*configPath)
	if err != nil {
		slog.Error("failed to init config", sl.Error(err))
		os.Exit(1)
	}
	slog.SetDefault(sl.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))

	if err := run(cfg); err != nil {
		slog.Error("audit writer stopped with error", sl.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.AuditConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := audit.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer repo.Close()
	slog.Info("successfully connected to database")

	spoolDir, err := filepath.Abs(cfg.SpoolDir)
	if err != nil {
		return err
	}
	spool, err := audit.NewSpool(spoolDir)
	if err != nil {
		return err
	}
	slog.Info("created spool file", slog.String("file", spool.Path()))

	consumer, err := sarama.NewConsumer(strings.Split(cfg.Kafka.Host, ","), sarama.NewConfig())
	if err != nil {
		return err
	}
	defer consumer.Close()

	return audit.NewWriter(consumer, cfg.Kafka.Topic, spool, repo, cfg.FlushInterval).Run(ctx)
}
