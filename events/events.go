// Package events publishes lifecycle changes of medicines, requests and
// manufacturers.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/logger"
)

const (
	MedicineCreated       = "medicine.created"
	MedicineUpdated       = "medicine.updated"
	MedicineDeleted       = "medicine.deleted"
	MedicineStatusChanged = "medicine.status_changed"
	MedicineDonated       = "medicine.donated"
	RequestCreated        = "request.created"
	RequestAccepted       = "request.accepted"
	RequestFulfilled      = "request.fulfilled"
	RequestRejected       = "request.rejected"
	RequestCancelled      = "request.cancelled"
	ManufacturerCreated   = "manufacturer.created"
	ManufacturerUpdated   = "manufacturer.updated"
	ManufacturerVerified  = "manufacturer.verified"
	ManufacturerDeleted   = "manufacturer.deleted"
)

type Event struct {
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	ActorID  string    `json:"actorId"`
	Status   string    `json:"status,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Timeout = 5 * time.Second
	prod, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return NewKafkaWithProducer(prod, topic), nil
}

func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

// Publish keys messages by entity id so one entity's events stay ordered
// within a partition.
func (k *Kafka) Publish(_ context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(e.EntityID),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		logger.Errorf("Failed to send %s to topic %s: %v", e.Type, k.topic, err)
		return err
	}
	logger.Infof("Event %s stored in topic(%s)/partition(%d)/offset(%d)", e.Type, k.topic, partition, offset)
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
