package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama/mocks"
)

func TestKafkaPublisherSendsJSON(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, nil)
	producer.ExpectInputWithCheckerFunctionAndSucceed(func(val []byte) error {
		var e Event
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e.Type != TypeRequestApproved || e.Subject != "req-1" || e.PatientID != "p1" {
			return fmt.Errorf("unexpected event %+v", e)
		}
		var payload map[string]string
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return err
		}
		if payload["note"] != "ok" {
			return fmt.Errorf("payload = %v", payload)
		}
		return nil
	})

	k := newKafkaPublisher(producer, "portal-events")
	e := New(TypeRequestApproved, "admin", "req-1", "p1", map[string]string{"note": "ok"})
	if err := k.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := k.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
