package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildSharesMessages(t *testing.T) {
	logger := testutil.NewMockLogger()
	child := logger.Named("billing").With(logging.ClientID("C001"))

	child.Warn("carry-in missing", logging.Month("apr"))

	assert.True(t, logger.HasMessage("warn", "carry-in missing"))
	v, ok := logger.Field("carry-in missing", "client_id")
	assert.True(t, ok)
	assert.Equal(t, "C001", v)
	v, ok = logger.Field("carry-in missing", "logger")
	assert.True(t, ok)
	assert.Equal(t, "billing", v)
}

//Personal.AI order the ending
