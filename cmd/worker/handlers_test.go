package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/internal/application/reporting"
	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MRM-Billing/internal/testutil"
)

type monthCall struct {
	month domainbilling.Month
	fy    int
}

type fakeSummaries struct {
	calls []monthCall
	err   error
}

func (f *fakeSummaries) Invalidate(_ context.Context, m domainbilling.Month, fy int) error {
	f.calls = append(f.calls, monthCall{m, fy})
	return f.err
}

type fakePublisher struct {
	calls []monthCall
	err   error
}

func (f *fakePublisher) PublishMonth(_ context.Context, m domainbilling.Month, fy int, _ ...reporting.Kind) ([]*reporting.PublishResult, error) {
	f.calls = append(f.calls, monthCall{m, fy})
	if f.err != nil {
		return nil, f.err
	}
	return []*reporting.PublishResult{{Kind: reporting.KindGST}}, nil
}

func entryMessage(t *testing.T, eventType string, p kafka.EntryEventPayload) *kafka.Message {
	t.Helper()
	env, err := kafka.NewEventEnvelope(eventType, p)
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return &kafka.Message{Topic: "mrm." + eventType, Value: data}
}

func TestMonthRefresher_Handle(t *testing.T) {
	summaries := &fakeSummaries{}
	exports := &fakePublisher{}
	logger := testutil.NewMockLogger()
	h := newMonthRefresher(summaries, exports, logger)

	msg := entryMessage(t, kafka.EventEntrySaved, kafka.EntryEventPayload{ClientID: "C001", Month: domainbilling.MonthApr, FYStart: 2025})
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, []monthCall{{domainbilling.MonthApr, 2025}}, summaries.calls)
	assert.Equal(t, []monthCall{{domainbilling.MonthApr, 2025}}, exports.calls)
	assert.True(t, logger.HasMessage("info", "month exports refreshed"))

	msg = entryMessage(t, kafka.EventEntryDeleted, kafka.EntryEventPayload{ClientID: "C001", Month: domainbilling.MonthMar, FYStart: 2024})
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, monthCall{domainbilling.MonthMar, 2024}, exports.calls[1])
}

func TestMonthRefresher_Failures(t *testing.T) {
	summaries := &fakeSummaries{err: errors.New("redis down")}
	exports := &fakePublisher{err: errors.New("upload refused")}
	logger := testutil.NewMockLogger()
	h := newMonthRefresher(summaries, exports, logger)
	ctx := context.Background()

	msg := entryMessage(t, kafka.EventEntrySaved, kafka.EntryEventPayload{ClientID: "C001", Month: domainbilling.MonthApr, FYStart: 2025})
	err := h.Handle(ctx, msg)
	require.Error(t, err)
	assert.True(t, logger.HasMessage("warn", "failed to invalidate month summary"))
	assert.True(t, logger.HasMessage("error", "failed to refresh month exports"))

	assert.Error(t, h.Handle(ctx, &kafka.Message{Topic: "mrm.billing.entry.saved", Value: []byte("{")}))

	bad := entryMessage(t, kafka.EventEntrySaved, kafka.EntryEventPayload{ClientID: "C001", Month: "xyz", FYStart: 2025})
	assert.Error(t, h.Handle(ctx, bad))
	assert.Len(t, exports.calls, 1)
}

func TestMonthRefresher_WithoutBackends(t *testing.T) {
	h := newMonthRefresher(nil, nil, nil)
	msg := entryMessage(t, kafka.EventEntrySaved, kafka.EntryEventPayload{ClientID: "C001", Month: domainbilling.MonthApr, FYStart: 2025})
	assert.NoError(t, h.Handle(context.Background(), msg))
}

//Personal.AI order the ending
