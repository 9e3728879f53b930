package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luozhen/go-chat-keeper/internal/adapter"
	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/models"
)

// Refresher fetches conversation state for one project and applies it to a
// StateStore. Every fetch is stamped with a monotonically increasing sequence
// number at dispatch time; a slow response that arrives after a newer fetch
// has already been applied is discarded, so the store can only move forward.
type Refresher struct {
	svc       adapter.ConversationService
	store     *StateStore
	projectID string
	log       *logger.Logger

	seq     atomic.Uint64
	applyMu sync.Mutex
	applied uint64
	closed  atomic.Bool

	onApply func(Snapshot)

	jobMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRefresher(svc adapter.ConversationService, store *StateStore, projectID string, log *logger.Logger) *Refresher {
	return &Refresher{svc: svc, store: store, projectID: projectID, log: log}
}

// SetOnApply registers a callback invoked after each accepted fetch, with the
// snapshot that was just applied. Must be called before Start.
func (r *Refresher) SetOnApply(fn func(Snapshot)) {
	r.onApply = fn
}

// Refresh performs one fetch-and-apply cycle. The providers listing and the
// token stats are merged into a single state set keyed by provider. A fetch
// whose responses arrive after a newer cycle has been applied returns nil and
// changes nothing.
func (r *Refresher) Refresh(ctx context.Context) error {
	if r.closed.Load() {
		return nil
	}
	seq := r.seq.Add(1)

	statuses, err := r.svc.GetProviders(ctx, r.projectID)
	if err != nil {
		return fmt.Errorf("refresh providers: %w", err)
	}
	stats, err := r.svc.GetStats(ctx, r.projectID)
	if err != nil {
		return fmt.Errorf("refresh stats: %w", err)
	}

	states := mergeStates(statuses, stats)
	r.apply(states, seq)
	return nil
}

// apply installs the state set unless a newer cycle already did, or the
// refresher was closed while this cycle was in flight.
func (r *Refresher) apply(states map[models.ProviderID]models.ProviderConversationState, seq uint64) {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	if r.closed.Load() {
		return
	}
	if seq <= r.applied {
		r.log.Debug().
			Uint64("seq", seq).
			Uint64("applied", r.applied).
			Msg("discarding stale refresh result")
		return
	}
	r.applied = seq
	r.store.ReplaceAll(states, seq, time.Now())

	if r.onApply != nil {
		r.onApply(r.store.Snapshot())
	}
}

// mergeStates joins the activity listing with token stats. A provider present
// only in stats still gets a row; its activity is derived from its message
// count. Usage is recomputed locally from tokens and window so values above
// 100% survive even if the service clamps its own field.
func mergeStates(statuses map[models.ProviderID]models.ProviderStatus, stats models.StatsResponse) map[models.ProviderID]models.ProviderConversationState {
	states := make(map[models.ProviderID]models.ProviderConversationState, len(statuses))

	for id, status := range statuses {
		st := models.ProviderConversationState{Provider: id, Active: status.Active}
		if status.Summary != nil {
			st.TotalMessages = status.Summary.TotalMessages
			st.UserMessages = status.Summary.UserMessages
			st.AssistantMessages = status.Summary.AssistantMessages
			st.HasSystemPrompt = status.Summary.HasSystemPrompt
		}
		states[id] = st
	}

	for _, ps := range stats.Providers {
		id := models.ProviderID(ps.Provider)
		st, ok := states[id]
		if !ok {
			st = models.ProviderConversationState{
				Provider:      id,
				Active:        ps.TotalMessages > 0,
				TotalMessages: ps.TotalMessages,
			}
		}
		st.EstimatedTokens = ps.EstimatedTokens
		st.ContextWindow = ps.ContextWindow
		if st.ContextWindow == 0 {
			st.ContextWindow = models.MetaFor(id).ContextWindow
		}
		st.UsagePercentage = models.UsagePercentage(st.EstimatedTokens, st.ContextWindow)
		st.OptimizationApplied = ps.OptimizationApplied
		st.LastOptimization = ps.LastOptimization
		states[id] = st
	}

	return states
}

// Start stops any previously running loop, then launches a background
// goroutine that calls Refresh every interval. If interval is zero or negative
// it defaults to 30 seconds. The goroutine exits when ctx is cancelled or Stop
// is called. Fetch errors are logged and the loop keeps going.
func (r *Refresher) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	r.Stop()

	r.jobMu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	r.jobMu.Unlock()

	go func() {
		defer r.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if err := r.Refresh(jobCtx); err != nil {
					r.log.Warn().Err(err).Msg("periodic refresh failed")
				}
			}
		}
	}()
}

// Stop cancels the background goroutine and blocks until it has fully exited.
// Safe to call when the loop is not running.
func (r *Refresher) Stop() {
	r.jobMu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.jobMu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Close stops the loop and marks the refresher terminal: any in-flight cycle
// that completes afterwards is discarded and the store keeps its last state.
func (r *Refresher) Close() {
	r.closed.Store(true)
	r.Stop()
}
