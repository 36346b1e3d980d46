package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/testutil"
)

func TestNewState_Defaults(t *testing.T) {
	s := NewState(nil)
	assert.Equal(t, domainbilling.MonthApr, s.Month())
	assert.Equal(t, *settings.Defaults(), s.Settings())
	assert.Empty(t, s.Clients())
	_, ok := s.Notice()
	assert.False(t, ok)
	_, ok = s.CurrentEntry()
	assert.False(t, ok)
}

func TestState_ClientSelection(t *testing.T) {
	s := NewState(nil).WithClients([]*client.Client{
		testutil.NewClient("C002", "zara", "0.10"),
		testutil.NewClient("C001", "Asha", "0.10"),
	})
	require.Len(t, s.Clients(), 2)
	assert.Equal(t, "Asha", s.Clients()[0].Name)

	s = s.SelectClient("C002")
	c, ok := s.SelectedClient()
	require.True(t, ok)
	assert.Equal(t, "C002", c.ClientID)

	assert.False(t, func() bool { _, ok := s.SelectClient("NOPE").SelectedClient(); return ok }())

	s = s.RemoveClient("C002")
	_, ok = s.SelectedClient()
	assert.False(t, ok)
	assert.Len(t, s.Clients(), 1)

	renamed := testutil.NewClient("C001", "Asha Rao", "0.20")
	s = s.PutClient(renamed)
	require.Len(t, s.Clients(), 1)
	assert.Equal(t, "Asha Rao", s.Clients()[0].Name)
}

func TestState_TransitionsDoNotMutateReceiver(t *testing.T) {
	base := NewState(nil).WithClients([]*client.Client{testutil.NewClient("C001", "Asha", "0.10")})
	e := testutil.NewEntry(t, "C001", "Asha", domainbilling.MonthApr, 2025)

	next := base.SelectClient("C001").UpsertEntry(e).Notify(NoticeSuccess, "saved")

	_, ok := base.CurrentEntry()
	assert.False(t, ok)
	_, ok = base.Notice()
	assert.False(t, ok)

	got, ok := next.CurrentEntry()
	require.True(t, ok)
	assert.Equal(t, e.Key(), got.Key())
	n, ok := next.Notice()
	require.True(t, ok)
	assert.Equal(t, Notice{Level: NoticeSuccess, Message: "saved"}, n)

	cleared := next.ClearNotice().RemoveEntry(e.Key())
	_, ok = cleared.CurrentEntry()
	assert.False(t, ok)
	_, ok = next.CurrentEntry()
	assert.True(t, ok)
}

func TestState_MonthEntries(t *testing.T) {
	entries := []*domainbilling.Entry{
		testutil.NewEntry(t, "C002", "Bela", domainbilling.MonthMay, 2025),
		testutil.NewEntry(t, "C001", "Asha", domainbilling.MonthMay, 2025),
		testutil.NewEntry(t, "C001", "Asha", domainbilling.MonthApr, 2025),
		testutil.NewEntry(t, "C001", "Asha", domainbilling.MonthMay, 2024),
	}
	s := NewState(nil).WithEntries(entries).SelectMonth(domainbilling.MonthMay)

	got := s.MonthEntries()
	require.Len(t, got, 2)
	assert.Equal(t, "Asha", got[0].ClientName)
	assert.Equal(t, "Bela", got[1].ClientName)

	assert.Equal(t, domainbilling.MonthMay, s.SelectMonth("xyz").Month())

	prior := *settings.Defaults()
	prior.FinancialYear = domainbilling.NewFinancialYear(2024)
	assert.Len(t, s.WithSettings(prior).MonthEntries(), 1)
}

//Personal.AI order the ending
