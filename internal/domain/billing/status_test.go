package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, s)

	s, err = ParseStatus("SUBMITTED")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, s)

	_, err = ParseStatus("paid")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidStatus))
}

func TestParseInvoiceStatus(t *testing.T) {
	for _, st := range InvoiceStatuses {
		got, err := ParseInvoiceStatus(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := ParseInvoiceStatus("cancelled")
	assert.True(t, errors.IsValidation(err))
}

func TestAnyTransition_AllowsEveryJump(t *testing.T) {
	p := AnyTransition{}
	assert.NoError(t, p.CheckStatus(StatusSubmitted, StatusDraft))
	assert.NoError(t, p.CheckInvoiceStatus(InvoiceSubmitted, InvoiceDraft))
	assert.NoError(t, p.CheckInvoiceStatus(InvoiceDraft, InvoiceAmountReceived))
	assert.Error(t, p.CheckStatus(StatusDraft, Status("x")))
}

func TestForwardOnly(t *testing.T) {
	p := ForwardOnly{}
	assert.NoError(t, p.CheckStatus(StatusDraft, StatusSubmitted))
	assert.True(t, errors.IsCode(p.CheckStatus(StatusSubmitted, StatusDraft), errors.ErrCodeTransitionDenied))

	assert.NoError(t, p.CheckInvoiceStatus(InvoiceDraft, InvoiceOutstanding))
	assert.NoError(t, p.CheckInvoiceStatus(InvoiceBillSent, InvoiceBillSent))
	assert.True(t, errors.IsCode(p.CheckInvoiceStatus(InvoiceAmountReceived, InvoiceBillSent), errors.ErrCodeTransitionDenied))
}

func TestPolicyFor(t *testing.T) {
	assert.IsType(t, ForwardOnly{}, PolicyFor(true))
	assert.IsType(t, AnyTransition{}, PolicyFor(false))
}

//Personal.AI order the ending
