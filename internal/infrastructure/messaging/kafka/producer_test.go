package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/internal/config"
	"github.com/turtacn/MRM-Billing/internal/testutil"
	apperrors "github.com/turtacn/MRM-Billing/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats {
	return kafka.WriterStats{}
}

func newTestProducer(w WriterInterface) *Producer {
	return newProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, testutil.NewMockLogger())
}

func newTestProducerMessage(topic, key, value string) *ProducerMessage {
	return &ProducerMessage{Topic: topic, Key: []byte(key), Value: []byte(value)}
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"localhost:9092"}}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b"}, MaxRetries: -1}))
}

func TestNewProducerConfig_FromServiceConfig(t *testing.T) {
	cfg := NewProducerConfig(config.KafkaConfig{
		Brokers:       []string{"kafka-1:9092"},
		MaxRetries:    5,
		SASLMechanism: "PLAIN",
		SASLUsername:  "mrm",
		SASLPassword:  "secret",
	})
	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Brokers)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "all", cfg.Acks)

	p, err := NewProducer(cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNewProducer_RejectsUnknownSASLMechanism(t *testing.T) {
	_, err := NewProducer(ProducerConfig{Brokers: []string{"b"}, SASLMechanism: "GSSAPI"}, nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPublish_Success(t *testing.T) {
	var captured []kafka.Message
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	})

	err := p.Publish(context.Background(), newTestProducerMessage("test", "k", "v"))
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, "test", captured[0].Topic)
	assert.Equal(t, "k", string(captured[0].Key))
	assert.Equal(t, "v", string(captured[0].Value))
	assert.False(t, captured[0].Time.IsZero())

	sent, failed, bytes := p.Metrics()
	assert.Equal(t, int64(1), sent)
	assert.Zero(t, failed)
	assert.Equal(t, int64(1), bytes)
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	ctx := context.Background()

	assert.True(t, apperrors.IsValidation(p.Publish(ctx, newTestProducerMessage("", "k", "v"))))
	assert.True(t, apperrors.IsValidation(p.Publish(ctx, newTestProducerMessage("t", "k", ""))))

	big := make([]byte, 1024*1024+1)
	assert.True(t, apperrors.IsValidation(p.Publish(ctx, &ProducerMessage{Topic: "t", Value: big})))
}

func TestPublish_Failure(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return errors.New("write failed")
		},
	})
	err := p.Publish(context.Background(), newTestProducerMessage("test", "k", "v"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))

	_, failed, _ := p.Metrics()
	assert.Equal(t, int64(1), failed)
}

func TestPublishBatch_PartialFailure(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			errs := make(kafka.WriteErrors, len(msgs))
			errs[1] = errors.New("fail")
			return errs
		},
	})
	res, err := p.PublishBatch(context.Background(), []*ProducerMessage{
		newTestProducerMessage("test", "1", "1"),
		newTestProducerMessage("test", "2", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
}

func TestPublishBatch_TotalFailure(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return errors.New("broker down")
		},
	})
	res, err := p.PublishBatch(context.Background(), []*ProducerMessage{
		newTestProducerMessage("test", "1", "1"),
		newTestProducerMessage("test", "2", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, -1, res.Errors[0].Index)
}

func TestClose_IsIdempotentAndRejectsPublish(t *testing.T) {
	closes := 0
	p := newTestProducer(&mockKafkaWriter{
		closeFunc: func() error {
			closes++
			return nil
		},
	})
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closes)

	err := p.Publish(context.Background(), newTestProducerMessage("t", "k", "v"))
	assert.True(t, errors.Is(err, ErrProducerClosed))
}

//Personal.AI order the ending
