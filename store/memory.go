package store

import (
	"context"
	"strings"
	"sync"

	"github.com/nutricalc/nutricalc-backend/ledger"
	"github.com/nutricalc/nutricalc-backend/models"
)

// Memory is an in-process Store and Catalog. It backs tests and is the
// default when no storage driver is configured.
type Memory struct {
	mu     sync.Mutex
	states map[string]State
	facts  map[string]models.FoodFact
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		states: make(map[string]State),
		facts:  make(map[string]models.FoodFact),
	}
}

func (m *Memory) Load(_ context.Context, userEmail string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.states[normalizeEmail(userEmail)]
	return copyState(s), nil
}

func (m *Memory) SaveProfile(_ context.Context, userEmail string, p models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(userEmail)
	s := m.states[key]
	s.Profile = &p
	m.states[key] = s
	return nil
}

func (m *Memory) AppendEntry(_ context.Context, userEmail string, e models.FoodLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(userEmail)
	s := m.states[key]
	s.FoodLog = ledger.Append(s.FoodLog, e)
	m.states[key] = s
	return nil
}

func (m *Memory) RemoveEntry(_ context.Context, userEmail, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(userEmail)
	s := m.states[key]
	s.FoodLog = ledger.Remove(s.FoodLog, entryID)
	m.states[key] = s
	return nil
}

func (m *Memory) Replace(_ context.Context, userEmail string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[normalizeEmail(userEmail)] = copyState(s)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) GetFact(_ context.Context, query string) (*models.FoodFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facts[NormalizeQuery(query)]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (m *Memory) PutFact(_ context.Context, fact models.FoodFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fact.Query = NormalizeQuery(fact.Query)
	m.facts[fact.Query] = fact
	return nil
}

func (m *Memory) ListUnverified(_ context.Context, limit int) ([]models.FoodFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.FoodFact, 0, limit)
	for _, f := range m.facts {
		if f.Verified {
			continue
		}
		out = append(out, f)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// NormalizeQuery canonicalizes a food search query for catalog keying.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(q))), " ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func copyState(s State) State {
	out := State{}
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	if len(s.FoodLog) > 0 {
		out.FoodLog = append([]models.FoodLogEntry(nil), s.FoodLog...)
	}
	return out
}
