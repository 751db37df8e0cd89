package notify

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	DefaultTopic = "hr.leave.decisions.v1"
	eventType    = "leave.decision"
)

// MessageWriter is the part of *kafkago.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type KafkaNotifier struct {
	writer MessageWriter
	topic  string
}

func NewKafka(writer MessageWriter, topic string) *KafkaNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaNotifier{writer: writer, topic: topic}
}

// NewKafkaWriter returns a writer for the given brokers. The topic is set per
// message, so the writer itself is topic-less.
func NewKafkaWriter(brokers ...string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		AllowAutoTopicCreation: true,
	}
}

// Notify publishes the event keyed by employee so one employee's decisions
// stay ordered within a partition.
func (k *KafkaNotifier) Notify(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}

	msg := kafkago.Message{
		Topic: k.topic,
		Key:   []byte(ev.EmployeeID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "decision", Value: []byte(ev.Decision)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish decision %s: %w", ev.EvaluationID, err)
	}
	return nil
}
