package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

const (
	EventEntrySaved   = "billing.entry.saved"
	EventEntryDeleted = "billing.entry.deleted"

	eventSource   = "mrm-billing"
	schemaVersion = "v1"
)

// Topics names the billing topics under an optional environment prefix.
type Topics struct {
	EntrySaved   string
	EntryDeleted string
	DeadLetter   string
}

// NewTopics returns mrm.billing.entry.saved, mrm.billing.entry.deleted and
// mrm.billing.dead_letter, each prefixed with prefix.
func NewTopics(prefix string) Topics {
	return Topics{
		EntrySaved:   prefix + "mrm." + EventEntrySaved,
		EntryDeleted: prefix + "mrm." + EventEntryDeleted,
		DeadLetter:   prefix + "mrm.billing.dead_letter",
	}
}

// EventEnvelope wraps every billing event.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EntryEventPayload identifies the entry an event is about. Totals are only
// set on saved events.
type EntryEventPayload struct {
	ClientID         string                `json:"client_id"`
	Month            billing.Month         `json:"month"`
	FYStart          int                   `json:"fy_start"`
	ClientName       string                `json:"client_name,omitempty"`
	Status           billing.Status        `json:"status,omitempty"`
	InvoiceStatus    billing.InvoiceStatus `json:"invoice_status,omitempty"`
	TotalInvoice     *decimal.Decimal      `json:"total_invoice,omitempty"`
	TotalOutstanding *decimal.Decimal      `json:"total_outstanding,omitempty"`
}

// Key returns the entry key carried by the payload.
func (p EntryEventPayload) Key() billing.Key {
	return billing.Key{ClientID: p.ClientID, Month: p.Month, FYStart: p.FYStart}
}

func NewEventEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeSerialization, "event has no payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// ToMessage encodes the envelope for topic, keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// DecodeEntryEvent unwraps an entry saved or deleted message.
func DecodeEntryEvent(msg *Message) (*EventEnvelope, *EntryEventPayload, error) {
	env, err := MessageToEventEnvelope(msg)
	if err != nil {
		return nil, nil, err
	}
	if env.EventType != EventEntrySaved && env.EventType != EventEntryDeleted {
		return nil, nil, errors.Newf(errors.ErrCodeValidation, "unexpected event type %q", env.EventType)
	}
	var p EntryEventPayload
	if err := env.DecodePayload(&p); err != nil {
		return nil, nil, err
	}
	if err := p.Key().Validate(); err != nil {
		return nil, nil, err
	}
	return env, &p, nil
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	DeleteTopics(topics ...string) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the billing topics at start-up.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to dial kafka")
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if cfg.NumPartitions <= 0 || cfg.ReplicationFactor <= 0 {
		return errors.Newf(errors.ErrCodeValidation, "topic %s needs positive partitions and replication", cfg.Name)
	}

	exists, err := m.TopicExists(ctx, cfg.Name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(cfg.RetentionMs, 10)})
	}
	if cfg.CleanupPolicy != "" {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "cleanup.policy", ConfigValue: cfg.CleanupPolicy})
	}
	if cfg.MaxMessageBytes > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "max.message.bytes", ConfigValue: strconv.Itoa(cfg.MaxMessageBytes)})
	}
	for k, v := range cfg.Configs {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: k, ConfigValue: v})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if errors.Is(err, kafka.TopicAlreadyExists) {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create topic "+cfg.Name)
	}
	m.logger.Info("topic created", logging.String("topic", cfg.Name))
	return nil
}

func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		if errors.Is(err, kafka.UnknownTopicOrPartition) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "failed to read partitions")
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, topic := range topics {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics lists the billing topics with their partitioning and retention.
func DefaultTopics(t Topics) []TopicConfig {
	const day = int64(24 * time.Hour / time.Millisecond)
	return []TopicConfig{
		{Name: t.EntrySaved, NumPartitions: 6, ReplicationFactor: 3, RetentionMs: 30 * day},
		{Name: t.EntryDeleted, NumPartitions: 3, ReplicationFactor: 3, RetentionMs: 30 * day},
		{Name: t.DeadLetter, NumPartitions: 1, ReplicationFactor: 3, RetentionMs: 90 * day},
	}
}

//Personal.AI order the ending
