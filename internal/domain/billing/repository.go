package billing

import (
	"context"
)

// EntryFilter narrows List. Zero values match everything.
type EntryFilter struct {
	Month    Month
	ClientID string
	Status   Status
	FYStart  int
}

// Matches reports whether e passes every set criterion.
func (f EntryFilter) Matches(e *Entry) bool {
	if f.Month != "" && e.Month != f.Month {
		return false
	}
	if f.ClientID != "" && e.ClientID != f.ClientID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.FYStart != 0 && e.FinancialYear.StartYear != f.FYStart {
		return false
	}
	return true
}

// StatusUpdate changes either or both status labels. Nil fields are left alone.
type StatusUpdate struct {
	Status        *Status        `json:"status,omitempty"`
	InvoiceStatus *InvoiceStatus `json:"invoice_status,omitempty"`
}

// Empty reports whether u changes nothing.
func (u StatusUpdate) Empty() bool {
	return u.Status == nil && u.InvoiceStatus == nil
}

// Apply writes the update onto e.
func (u StatusUpdate) Apply(e *Entry) {
	if u.Status != nil {
		e.Status = *u.Status
	}
	if u.InvoiceStatus != nil {
		e.InvoiceStatus = *u.InvoiceStatus
	}
}

// EntryRepository persists billing entries keyed by (client, month, financial year).
// Save is an atomic upsert that replaces every stored field but keeps ID and
// CreatedAt. Implementations never recompute derived fields.
type EntryRepository interface {
	Save(ctx context.Context, e *Entry) (*Entry, error)
	Get(ctx context.Context, key Key) (*Entry, error)
	Delete(ctx context.Context, key Key) error
	ListByMonth(ctx context.Context, month Month, fyStart int) ([]*Entry, error)
	ListByClient(ctx context.Context, clientID string) ([]*Entry, error)
	List(ctx context.Context, filter EntryFilter) ([]*Entry, error)
	UpdateStatus(ctx context.Context, key Key, update StatusUpdate) (*Entry, error)
}

//Personal.AI order the ending
