// Package audit drains portal events from Kafka into Postgres. Events
// are spooled to CSV and imported in batches.
package audit

import (
	"PortalServer/internal/events"
	"PortalServer/pkg/sl"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/IBM/sarama"
)

type Importer interface {
	ImportFromCsv(ctx context.Context, path string) error
}

type Writer struct {
	consumer      sarama.Consumer
	topic         string
	spool         *Spool
	importer      Importer
	flushInterval time.Duration
}

func NewWriter(consumer sarama.Consumer, topic string, spool *Spool, importer Importer, flushInterval time.Duration) *Writer {
	return &Writer{
		consumer:      consumer,
		topic:         topic,
		spool:         spool,
		importer:      importer,
		flushInterval: flushInterval,
	}
}

// Run consumes until ctx is done or the partition closes, then imports
// whatever is still spooled.
func (w *Writer) Run(ctx context.Context) error {
	partitionConsumer, err := w.consumer.ConsumePartition(w.topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("failed to consume partition, topic = %s: %w", w.topic, err)
	}
	defer func() {
		if err := partitionConsumer.Close(); err != nil {
			slog.Error("failed to close partition consumer", sl.Error(err))
		}
	}()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	slog.Info("starting to listen kafka", slog.String("topic", w.topic))

	for {
		select {
		case msg, ok := <-partitionConsumer.Messages():
			if !ok {
				slog.Error("kafka's channel closed")
				return w.shutdown()
			}
			w.handle(msg)

		case <-ticker.C:
			w.flush(ctx)

		case <-ctx.Done():
			return w.shutdown()
		}
	}
}

func (w *Writer) handle(msg *sarama.ConsumerMessage) {
	var e events.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		slog.Error("failed to decode msg.Value", slog.Int64("offset", msg.Offset), sl.Error(err))
		return
	}
	if err := w.spool.Write(e); err != nil {
		slog.Error("failed to spool event", slog.String("id", e.ID), sl.Error(err))
		return
	}
	slog.Debug("received event", slog.String("id", e.ID), slog.String("type", e.Type))
}

// flush rotates a non-empty spool and imports the closed file. A file
// that fails to import is left on disk.
func (w *Writer) flush(ctx context.Context) {
	if w.spool.Rows() == 0 {
		return
	}
	rows := w.spool.Rows()
	path, err := w.spool.Rotate()
	if err != nil {
		slog.Error("failed to rotate spool", sl.Error(err))
		return
	}
	w.importFile(ctx, path, rows)
}

func (w *Writer) importFile(ctx context.Context, path string, rows int) {
	if err := w.importer.ImportFromCsv(ctx, path); err != nil {
		slog.Error("failed to import data from csv file", slog.String("file", path), sl.Error(err))
		return
	}
	if err := os.Remove(path); err != nil {
		slog.Error("failed to remove imported file", slog.String("file", path), sl.Error(err))
	}
	slog.Info("successfully imported events", slog.Int("rows", rows))
}

func (w *Writer) shutdown() error {
	rows := w.spool.Rows()
	path, err := w.spool.Close()
	if err != nil {
		return fmt.Errorf("Writer.shutdown: %w", err)
	}
	if rows == 0 {
		os.Remove(path)
	} else {
		// the run context is already cancelled
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		w.importFile(ctx, path, rows)
	}
	slog.Info("audit writer is closing")
	return nil
}
