// Package kafka streams audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"votegate/internal/platform/kafka/producer"
	audit "votegate/pkg/platform/audit"
)

const DefaultTopic = "votegate.audit"

// Producer is the subset of producer.Producer the store needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Store appends audit events to a topic as JSON. Records are keyed by
// session id (or subject) so one session's events stay ordered.
type Store struct {
	producer Producer
	topic    string
}

func NewStore(p Producer, topic string) *Store {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	key := event.SessionID
	if key == "" {
		key = event.Subject
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			"action":   event.Action,
			"category": string(event.Category()),
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
