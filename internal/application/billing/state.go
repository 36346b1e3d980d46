package billing

import (
	"sort"
	"strings"

	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a one-shot message for the operator.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// State is the working set of an interactive billing session: the roster,
// the selected client and month, the loaded entries and the settings in
// force. Transitions never mutate the receiver; each returns a new State.
type State struct {
	clients  []*client.Client
	selected string
	month    domainbilling.Month
	entries  map[domainbilling.Key]*domainbilling.Entry
	settings settings.Settings
	notice   *Notice
}

// NewState starts a session at April with s (nil means defaults).
func NewState(s *settings.Settings) State {
	if s == nil {
		s = settings.Defaults()
	}
	return State{
		month:    domainbilling.MonthApr,
		entries:  map[domainbilling.Key]*domainbilling.Entry{},
		settings: *s,
	}
}

func (s State) Clients() []*client.Client {
	return append([]*client.Client(nil), s.clients...)
}

func (s State) Month() domainbilling.Month { return s.month }

func (s State) Settings() settings.Settings { return s.settings }

func (s State) Notice() (Notice, bool) {
	if s.notice == nil {
		return Notice{}, false
	}
	return *s.notice, true
}

// SelectedClient returns the selected client, if any.
func (s State) SelectedClient() (*client.Client, bool) {
	for _, c := range s.clients {
		if c.ClientID == s.selected {
			return c, true
		}
	}
	return nil, false
}

// CurrentEntry is the entry of the selected client for the selected month
// in the active financial year.
func (s State) CurrentEntry() (*domainbilling.Entry, bool) {
	if s.selected == "" {
		return nil, false
	}
	e, ok := s.entries[s.currentKey(s.selected)]
	return e, ok
}

// MonthEntries lists the loaded entries of the selected month ordered by
// client name.
func (s State) MonthEntries() []*domainbilling.Entry {
	var out []*domainbilling.Entry
	for k, e := range s.entries {
		if k.Month == s.month && k.FYStart == s.settings.FinancialYear.StartYear {
			out = append(out, e)
		}
	}
	domainbilling.SortByClientName(out)
	return out
}

// WithClients replaces the roster. A selection whose client disappeared is
// cleared.
func (s State) WithClients(cs []*client.Client) State {
	next := s.clone()
	next.clients = sortedClients(cs)
	if _, ok := next.SelectedClient(); !ok {
		next.selected = ""
	}
	return next
}

// PutClient adds c or replaces the client with the same id.
func (s State) PutClient(c *client.Client) State {
	cs := make([]*client.Client, 0, len(s.clients)+1)
	for _, existing := range s.clients {
		if existing.ClientID != c.ClientID {
			cs = append(cs, existing)
		}
	}
	return s.WithClients(append(cs, c))
}

func (s State) RemoveClient(clientID string) State {
	cs := make([]*client.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if c.ClientID != clientID {
			cs = append(cs, c)
		}
	}
	return s.WithClients(cs)
}

// SelectClient selects a client of the roster; unknown ids clear the selection.
func (s State) SelectClient(clientID string) State {
	next := s.clone()
	next.selected = ""
	for _, c := range s.clients {
		if c.ClientID == clientID {
			next.selected = clientID
		}
	}
	return next
}

// SelectMonth ignores invalid month codes.
func (s State) SelectMonth(m domainbilling.Month) State {
	if !m.Valid() {
		return s
	}
	next := s.clone()
	next.month = m
	return next
}

// WithEntries replaces every loaded entry.
func (s State) WithEntries(es []*domainbilling.Entry) State {
	next := s.clone()
	next.entries = make(map[domainbilling.Key]*domainbilling.Entry, len(es))
	for _, e := range es {
		next.entries[e.Key()] = e.Clone()
	}
	return next
}

func (s State) UpsertEntry(e *domainbilling.Entry) State {
	next := s.clone()
	next.entries[e.Key()] = e.Clone()
	return next
}

func (s State) RemoveEntry(key domainbilling.Key) State {
	next := s.clone()
	delete(next.entries, key)
	return next
}

func (s State) WithSettings(set settings.Settings) State {
	next := s.clone()
	next.settings = set
	return next
}

func (s State) Notify(level NoticeLevel, message string) State {
	next := s.clone()
	next.notice = &Notice{Level: level, Message: message}
	return next
}

func (s State) ClearNotice() State {
	next := s.clone()
	next.notice = nil
	return next
}

func (s State) currentKey(clientID string) domainbilling.Key {
	return domainbilling.Key{ClientID: clientID, Month: s.month, FYStart: s.settings.FinancialYear.StartYear}
}

func (s State) clone() State {
	next := s
	next.clients = append([]*client.Client(nil), s.clients...)
	next.entries = make(map[domainbilling.Key]*domainbilling.Entry, len(s.entries))
	for k, e := range s.entries {
		next.entries[k] = e
	}
	return next
}

func sortedClients(cs []*client.Client) []*client.Client {
	out := append([]*client.Client(nil), cs...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

//Personal.AI order the ending
