package service

import (
	"context"
	"testing"

	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlowUnderTest(stub *stubConversationService, consumer SessionConsumer) (*RestorationFlow, *MutationCoordinator, *StateStore) {
	store := NewStateStore()
	log := logger.Nop()
	refresher := NewRefresher(stub, store, "proj-1", log)
	mutations := NewMutationCoordinator(stub, store, refresher, "proj-1", log)
	flow := NewRestorationFlow(refresher, store, mutations, consumer, log)
	return flow, mutations, store
}

// ── Run ──────────────────────────────────────────────────────────────────────

func TestRestorationFlow_Run_TwoActiveProviders(t *testing.T) {
	stub := &stubConversationService{
		providers: map[models.ProviderID]models.ProviderStatus{
			models.ProviderDeepSeek: {Active: true, Summary: summaryOf(5, 3, 2, false)},
			models.ProviderQwen:     {Active: true, Summary: summaryOf(3, 2, 1, false)},
			models.ProviderKimi:     {Active: false},
		},
	}
	var delivered models.SessionInfo
	flow, _, _ := newFlowUnderTest(stub, func(info models.SessionInfo) { delivered = info })

	info, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, info.HasActiveConversation)
	assert.Equal(t, []models.ProviderID{models.ProviderDeepSeek, models.ProviderQwen}, info.Providers)
	assert.Equal(t, 8, info.MessageCount)
	assert.False(t, info.LastActivity.IsZero())
	assert.Equal(t, info, delivered, "the consumer receives exactly what Run returns")
}

func TestRestorationFlow_Run_NoActiveConversation(t *testing.T) {
	stub := &stubConversationService{
		providers: map[models.ProviderID]models.ProviderStatus{
			models.ProviderKimi: {Active: false},
		},
	}
	flow, _, _ := newFlowUnderTest(stub, nil)

	info, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, info.HasActiveConversation)
	assert.Empty(t, info.Providers)
	assert.Zero(t, info.MessageCount)
}

func TestRestorationFlow_Run_ActiveButEmptyProviderExcluded(t *testing.T) {
	// active=true with zero messages is not a restorable conversation.
	stub := &stubConversationService{
		providers: map[models.ProviderID]models.ProviderStatus{
			models.ProviderDoubao: {Active: true, Summary: summaryOf(0, 0, 0, false)},
		},
	}
	flow, _, _ := newFlowUnderTest(stub, nil)

	info, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, info.HasActiveConversation)
}

// ── Mutation gating ──────────────────────────────────────────────────────────

func TestRestorationFlow_MutationsRejectedBeforeRun(t *testing.T) {
	stub := &stubConversationService{providers: map[models.ProviderID]models.ProviderStatus{}}
	_, mutations, _ := newFlowUnderTest(stub, nil)

	_, err := mutations.BeginClearAll()
	assert.ErrorIs(t, err, ErrMutationNotReady)

	_, err = mutations.BeginClearOne(models.ProviderDeepSeek)
	assert.ErrorIs(t, err, ErrMutationNotReady)
}

func TestRestorationFlow_Run_ArmsMutations(t *testing.T) {
	stub := &stubConversationService{
		providers: map[models.ProviderID]models.ProviderStatus{
			models.ProviderDeepSeek: {Active: true, Summary: summaryOf(5, 3, 2, false)},
		},
	}
	flow, mutations, _ := newFlowUnderTest(stub, nil)

	_, err := flow.Run(context.Background())
	require.NoError(t, err)

	_, err = mutations.BeginClearOne(models.ProviderDeepSeek)
	assert.NoError(t, err)
}

func TestRestorationFlow_Run_FetchFailure_StillArmsMutations(t *testing.T) {
	stub := &stubConversationService{err: assert.AnError}
	flow, mutations, _ := newFlowUnderTest(stub, nil)

	_, err := flow.Run(context.Background())
	require.Error(t, err)

	// The gate is open; the request still fails its own precondition because
	// the store is empty, not because restoration never ran.
	_, err = mutations.BeginClearAll()
	assert.ErrorIs(t, err, ErrNothingToClear)
}

func TestRestorationFlow_Run_FetchFailure_ConsumerSeesEmptySession(t *testing.T) {
	stub := &stubConversationService{err: assert.AnError}
	called := false
	var delivered models.SessionInfo
	flow, _, _ := newFlowUnderTest(stub, func(info models.SessionInfo) {
		called = true
		delivered = info
	})

	_, err := flow.Run(context.Background())

	require.Error(t, err)
	assert.True(t, called, "a failed fetch reads as an empty session, not silence")
	assert.False(t, delivered.HasActiveConversation)
	assert.Empty(t, delivered.Providers)
	assert.Zero(t, delivered.MessageCount)
}
