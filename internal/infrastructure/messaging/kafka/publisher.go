package kafka

import (
	"context"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
)

type messagePublisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// EntryEventPublisher announces saved and deleted billing entries.
type EntryEventPublisher struct {
	producer messagePublisher
	topics   Topics
}

func NewEntryEventPublisher(p *Producer, topics Topics) *EntryEventPublisher {
	return &EntryEventPublisher{producer: p, topics: topics}
}

func (p *EntryEventPublisher) EntrySaved(ctx context.Context, e *billing.Entry) error {
	total, outstanding := e.TotalInvoice, e.Outstanding.Total
	return p.publish(ctx, p.topics.EntrySaved, EventEntrySaved, EntryEventPayload{
		ClientID:         e.ClientID,
		Month:            e.Month,
		FYStart:          e.FinancialYear.StartYear,
		ClientName:       e.ClientName,
		Status:           e.Status,
		InvoiceStatus:    e.InvoiceStatus,
		TotalInvoice:     &total,
		TotalOutstanding: &outstanding,
	})
}

func (p *EntryEventPublisher) EntryDeleted(ctx context.Context, key billing.Key) error {
	return p.publish(ctx, p.topics.EntryDeleted, EventEntryDeleted, EntryEventPayload{
		ClientID: key.ClientID,
		Month:    key.Month,
		FYStart:  key.FYStart,
	})
}

func (p *EntryEventPublisher) publish(ctx context.Context, topic, eventType string, payload EntryEventPayload) error {
	env, err := NewEventEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(topic, payload.ClientID)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

//Personal.AI order the ending
