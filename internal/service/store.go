package service

import (
	"sort"
	"sync"
	"time"

	"github.com/luozhen/go-chat-keeper/models"
)

// Snapshot is one immutable view of the per-provider conversation states,
// stamped with the sequence number of the fetch that produced it.
type Snapshot struct {
	States    map[models.ProviderID]models.ProviderConversationState
	Seq       uint64
	FetchedAt time.Time
}

// StateStore holds the latest accepted conversation states. Writers replace
// the whole map atomically; readers get copies and can never observe a
// half-applied fetch.
type StateStore struct {
	mu        sync.RWMutex
	states    map[models.ProviderID]models.ProviderConversationState
	seq       uint64
	fetchedAt time.Time
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[models.ProviderID]models.ProviderConversationState)}
}

// ReplaceAll swaps in a new full set of provider states. Missing providers are
// dropped, not retained: absence from a successful fetch means no conversation.
func (s *StateStore) ReplaceAll(states map[models.ProviderID]models.ProviderConversationState, seq uint64, fetchedAt time.Time) {
	copied := make(map[models.ProviderID]models.ProviderConversationState, len(states))
	for id, st := range states {
		copied[id] = st
	}

	s.mu.Lock()
	s.states = copied
	s.seq = seq
	s.fetchedAt = fetchedAt
	s.mu.Unlock()
}

// State returns the stored state for one provider and whether it is present.
func (s *StateStore) State(id models.ProviderID) (models.ProviderConversationState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[id]
	return st, ok
}

// Snapshot returns a copy of the full store contents.
func (s *StateStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(map[models.ProviderID]models.ProviderConversationState, len(s.states))
	for id, st := range s.states {
		copied[id] = st
	}
	return Snapshot{States: copied, Seq: s.seq, FetchedAt: s.fetchedAt}
}

// Seq returns the sequence number of the last accepted fetch, 0 if none.
func (s *StateStore) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Aggregate derives dashboard totals from the current snapshot.
func (s *StateStore) Aggregate() models.AggregateView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var agg models.AggregateView
	for _, st := range s.states {
		if st.HasMessages() {
			agg.ActiveCount++
		}
		agg.TotalTokens += st.EstimatedTokens
		if st.UsagePercentage > agg.MaxUsagePercentage {
			agg.MaxUsagePercentage = st.UsagePercentage
		}
	}
	return agg
}

// ActiveProviders lists providers holding a restorable conversation, in
// registry order with unknown ids sorted lexicographically after.
func (s *StateStore) ActiveProviders() []models.ProviderID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeInDisplayOrder(s.states)
}

func activeInDisplayOrder(states map[models.ProviderID]models.ProviderConversationState) []models.ProviderID {
	var out []models.ProviderID
	for _, meta := range models.KnownProviders() {
		if st, ok := states[meta.ID]; ok && st.HasMessages() {
			out = append(out, meta.ID)
		}
	}

	var extras []models.ProviderID
	for id, st := range states {
		if !models.IsKnown(id) && st.HasMessages() {
			extras = append(extras, id)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })

	return append(out, extras...)
}
