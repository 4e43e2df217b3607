package events

import (
	"PortalServer/pkg/sl"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"
)

type KafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	wg       sync.WaitGroup
}

func NewKafkaPublisher(hosts []string, topic string) (*KafkaPublisher, error) {
	op := "events.NewKafkaPublisher"
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewAsyncProducer(hosts, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create kafka producer: %s", op, err.Error())
	}
	return newKafkaPublisher(producer, topic), nil
}

func newKafkaPublisher(producer sarama.AsyncProducer, topic string) *KafkaPublisher {
	k := &KafkaPublisher{producer: producer, topic: topic}
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		for perr := range producer.Errors() {
			slog.Error("failed to deliver event", slog.String("topic", topic), sl.Error(perr.Err))
		}
	}()
	return k
}

func (k *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events.KafkaPublisher.Publish: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(e.ID),
		Value: sarama.ByteEncoder(data),
	}
	select {
	case k.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes buffered messages and waits for the error drain.
func (k *KafkaPublisher) Close() error {
	err := k.producer.Close()
	k.wg.Wait()
	return err
}
