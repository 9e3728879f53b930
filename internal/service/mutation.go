package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luozhen/go-chat-keeper/internal/adapter"
	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/models"
)

var (
	// ErrMutationNotReady rejects destructive requests made before session
	// restoration has completed.
	ErrMutationNotReady = errors.New("session restoration has not finished")
	// ErrMutationInFlight rejects a new request while another clear is
	// pending confirmation or executing.
	ErrMutationInFlight = errors.New("another clear is already in progress")
	// ErrProviderInactive rejects clearing a provider with no conversation.
	ErrProviderInactive = errors.New("provider has no conversation to clear")
	// ErrNothingToClear rejects a reset-all when no provider holds messages.
	ErrNothingToClear = errors.New("no conversations to clear")
	// ErrNoPendingMutation reports Confirm or Cancel without a pending request.
	ErrNoPendingMutation = errors.New("no pending clear to act on")
)

// MutationKind discriminates the two destructive operations.
type MutationKind int

const (
	MutationClearOne MutationKind = iota
	MutationClearAll
)

// PendingMutation describes a destructive request awaiting confirmation.
// Targets is captured at request time so the confirmation prompt names
// exactly what will be cleared, even if a refresh lands in between.
type PendingMutation struct {
	Kind    MutationKind
	Targets []models.ProviderID
}

type mutationPhase int

const (
	mutationIdle mutationPhase = iota
	mutationConfirming
	mutationInFlight
)

// MutationCoordinator serializes destructive actions against the conversation
// service. Every clear passes through an explicit confirmation step, and at
// most one request occupies the pipeline at a time. The coordinator starts
// disarmed; RestorationFlow arms it once the user has seen the restored state.
type MutationCoordinator struct {
	svc       adapter.ConversationService
	store     *StateStore
	refresher *Refresher
	projectID string
	log       *logger.Logger

	mu      sync.Mutex
	ready   bool
	phase   mutationPhase
	pending PendingMutation
}

func NewMutationCoordinator(svc adapter.ConversationService, store *StateStore, refresher *Refresher, projectID string, log *logger.Logger) *MutationCoordinator {
	return &MutationCoordinator{
		svc:       svc,
		store:     store,
		refresher: refresher,
		projectID: projectID,
		log:       log,
	}
}

// arm opens the gate for destructive actions. Called by RestorationFlow.
func (c *MutationCoordinator) arm() {
	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
}

// Pending returns the request awaiting confirmation, if any.
func (c *MutationCoordinator) Pending() (PendingMutation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.phase == mutationConfirming
}

// BeginClearOne stages a clear of one provider's history. The provider must
// currently hold a conversation; clearing an inactive provider is a user
// mistake, not a no-op.
func (c *MutationCoordinator) BeginClearOne(provider models.ProviderID) (PendingMutation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.gateLocked(); err != nil {
		return PendingMutation{}, err
	}
	st, ok := c.store.State(provider)
	if !ok || !st.HasMessages() {
		return PendingMutation{}, fmt.Errorf("%w: %s", ErrProviderInactive, provider)
	}

	c.pending = PendingMutation{Kind: MutationClearOne, Targets: []models.ProviderID{provider}}
	c.phase = mutationConfirming
	return c.pending, nil
}

// BeginClearAll stages a reset of every active conversation. At least one
// provider must hold messages; a reset over an empty project issues zero
// requests and is rejected up front instead.
func (c *MutationCoordinator) BeginClearAll() (PendingMutation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.gateLocked(); err != nil {
		return PendingMutation{}, err
	}
	targets := c.store.ActiveProviders()
	if len(targets) == 0 {
		return PendingMutation{}, ErrNothingToClear
	}

	c.pending = PendingMutation{Kind: MutationClearAll, Targets: targets}
	c.phase = mutationConfirming
	return c.pending, nil
}

func (c *MutationCoordinator) gateLocked() error {
	if !c.ready {
		return ErrMutationNotReady
	}
	if c.phase != mutationIdle {
		return ErrMutationInFlight
	}
	return nil
}

// Cancel discards the pending request and frees the pipeline.
func (c *MutationCoordinator) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != mutationConfirming {
		return ErrNoPendingMutation
	}
	c.phase = mutationIdle
	c.pending = PendingMutation{}
	return nil
}

// Confirm executes the pending request. On success the coordinator triggers a
// refresh so the store reflects the cleared state; on failure the store is
// left untouched and no refresh is issued, keeping the last pre-failure view.
// The pipeline is freed on both paths.
func (c *MutationCoordinator) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != mutationConfirming {
		c.mu.Unlock()
		return ErrNoPendingMutation
	}
	req := c.pending
	c.phase = mutationInFlight
	c.mu.Unlock()

	err := c.execute(ctx, req)

	c.mu.Lock()
	c.phase = mutationIdle
	c.pending = PendingMutation{}
	c.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Msg("clear request failed")
		return err
	}

	if refreshErr := c.refresher.Refresh(ctx); refreshErr != nil {
		// The clear itself succeeded; the next periodic cycle will catch up.
		c.log.Warn().Err(refreshErr).Msg("post-clear refresh failed")
	}
	return nil
}

func (c *MutationCoordinator) execute(ctx context.Context, req PendingMutation) error {
	switch req.Kind {
	case MutationClearAll:
		result, err := c.svc.ResetAll(ctx, c.projectID)
		if err != nil {
			return fmt.Errorf("reset all: %w", err)
		}
		c.log.Info().
			Strs("cleared", result.ClearedProviders).
			Msg("cleared all conversations")
		return nil
	default:
		provider := req.Targets[0]
		if err := c.svc.ClearHistory(ctx, c.projectID, provider); err != nil {
			return fmt.Errorf("clear %s history: %w", provider, err)
		}
		c.log.Info().
			Str("provider", string(provider)).
			Msg("cleared conversation")
		return nil
	}
}
