package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/testutil"
)

func TestEntryEventPublisher_Saved(t *testing.T) {
	rec := &recordingPublisher{}
	pub := &EntryEventPublisher{producer: rec, topics: NewTopics("")}

	e := testutil.NewEntry(t, "C001", "Asha", billing.MonthApr, 2025,
		testutil.WithRaw(billing.SourceIPRS, "1000"),
		testutil.WithRaw(billing.SourcePRS, "100"))
	require.NoError(t, pub.EntrySaved(context.Background(), e))

	require.Len(t, rec.msgs, 1)
	msg := rec.msgs[0]
	assert.Equal(t, "mrm.billing.entry.saved", msg.Topic)
	assert.Equal(t, "C001", string(msg.Key))

	env, payload, err := DecodeEntryEvent(&Message{Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, EventEntrySaved, env.EventType)
	assert.Equal(t, e.Key(), payload.Key())
	require.NotNil(t, payload.TotalInvoice)
	assert.True(t, payload.TotalInvoice.Equal(e.TotalInvoice))
	assert.Equal(t, billing.StatusDraft, payload.Status)
}

func TestEntryEventPublisher_Deleted(t *testing.T) {
	rec := &recordingPublisher{}
	pub := &EntryEventPublisher{producer: rec, topics: NewTopics("")}

	key := billing.Key{ClientID: "C002", Month: billing.MonthMar, FYStart: 2024}
	require.NoError(t, pub.EntryDeleted(context.Background(), key))

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "mrm.billing.entry.deleted", rec.msgs[0].Topic)
	_, payload, err := DecodeEntryEvent(&Message{Value: rec.msgs[0].Value})
	require.NoError(t, err)
	assert.Equal(t, key, payload.Key())
}

//Personal.AI order the ending
