package billing

import (
	"strings"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// Status is the coarse draft/submitted flag kept for compatibility with the
// legacy ledger.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// ParseStatus validates a coarse status. Blank defaults to draft.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StatusDraft, nil
	}
	if !st.Valid() {
		return "", errors.Newf(errors.ErrCodeInvalidStatus, "unrecognised status %q", s)
	}
	return st, nil
}

// Valid reports whether s is draft or submitted.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusSubmitted
}

// InvoiceStatus is the fine-grained invoice workflow label.
type InvoiceStatus string

const (
	InvoiceDraft          InvoiceStatus = "draft"
	InvoiceBillSent       InvoiceStatus = "bill_sent"
	InvoiceAmountReceived InvoiceStatus = "amount_received"
	InvoiceOutstanding    InvoiceStatus = "outstanding"
	InvoiceSubmitted      InvoiceStatus = "submitted"
)

// InvoiceStatuses lists the workflow labels in their conventional order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceDraft, InvoiceBillSent, InvoiceAmountReceived, InvoiceOutstanding, InvoiceSubmitted,
}

// ParseInvoiceStatus validates a workflow label. Blank defaults to draft.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return InvoiceDraft, nil
	}
	if !st.Valid() {
		return "", errors.Newf(errors.ErrCodeInvalidStatus, "unrecognised invoice status %q", s)
	}
	return st, nil
}

// Valid reports whether s is a known workflow label.
func (s InvoiceStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank returns the position of s in InvoiceStatuses, or -1.
func (s InvoiceStatus) Rank() int {
	for i, candidate := range InvoiceStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// TransitionPolicy decides whether a status change is allowed. The engine ships
// with AnyTransition; ForwardOnly is available when ordering must be enforced.
type TransitionPolicy interface {
	CheckStatus(from, to Status) error
	CheckInvoiceStatus(from, to InvoiceStatus) error
}

// AnyTransition permits every change between valid labels.
type AnyTransition struct{}

func (AnyTransition) CheckStatus(from, to Status) error {
	if !to.Valid() {
		return errors.Newf(errors.ErrCodeInvalidStatus, "unrecognised status %q", to)
	}
	return nil
}

func (AnyTransition) CheckInvoiceStatus(from, to InvoiceStatus) error {
	if !to.Valid() {
		return errors.Newf(errors.ErrCodeInvalidStatus, "unrecognised invoice status %q", to)
	}
	return nil
}

// ForwardOnly rejects moving backwards: submitted cannot return to draft, and
// the workflow label may only advance along InvoiceStatuses.
type ForwardOnly struct{}

func (ForwardOnly) CheckStatus(from, to Status) error {
	if err := (AnyTransition{}).CheckStatus(from, to); err != nil {
		return err
	}
	if from == StatusSubmitted && to == StatusDraft {
		return errors.New(errors.ErrCodeTransitionDenied, "submitted entry cannot return to draft")
	}
	return nil
}

func (ForwardOnly) CheckInvoiceStatus(from, to InvoiceStatus) error {
	if err := (AnyTransition{}).CheckInvoiceStatus(from, to); err != nil {
		return err
	}
	if from.Valid() && to.Rank() < from.Rank() {
		return errors.Newf(errors.ErrCodeTransitionDenied, "invoice status cannot move from %s back to %s", from, to)
	}
	return nil
}

// PolicyFor returns ForwardOnly when enforce is set, AnyTransition otherwise.
func PolicyFor(enforce bool) TransitionPolicy {
	if enforce {
		return ForwardOnly{}
	}
	return AnyTransition{}
}

//Personal.AI order the ending
