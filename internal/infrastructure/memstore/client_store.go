package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/turtacn/MRM-Billing/internal/domain/client"
)

// ClientStore is an in-memory client.Directory.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[string]*client.Client
}

// NewClientStore seeds the store with clients.
func NewClientStore(clients ...*client.Client) *ClientStore {
	s := &ClientStore{clients: make(map[string]*client.Client)}
	for _, c := range clients {
		cp := *c
		cp.Normalize()
		s.clients[cp.ClientID] = &cp
	}
	return s
}

var _ client.Directory = (*ClientStore)(nil)

func (s *ClientStore) Get(_ context.Context, clientID string) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, client.NotFound(clientID)
	}
	cp := *c
	return &cp, nil
}

func (s *ClientStore) List(_ context.Context, activeOnly bool) ([]*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*client.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if activeOnly && !c.IsActive {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out, nil
}

func (s *ClientStore) Save(_ context.Context, c *client.Client) (*client.Client, error) {
	saved := *c
	saved.Normalize()
	if err := saved.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if prev, ok := s.clients[saved.ClientID]; ok {
		saved.CreatedAt = prev.CreatedAt
	} else {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	stored := saved
	s.clients[saved.ClientID] = &stored
	return &saved, nil
}

//Personal.AI order the ending
