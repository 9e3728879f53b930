package service

import (
	"context"
	"fmt"

	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/models"
)

// SessionConsumer receives the outcome of the startup restoration. The
// dashboard uses it to announce a restored session; a nil consumer is allowed.
type SessionConsumer func(models.SessionInfo)

// RestorationFlow runs the one-shot startup sequence: fetch the current
// conversation state, summarize it into a SessionInfo, hand it to the
// consumer, and only then allow mutations. Destructive actions requested
// before restoration has finished are rejected by the coordinator, so a user
// can never clear state they have not seen yet.
type RestorationFlow struct {
	refresher *Refresher
	store     *StateStore
	mutations *MutationCoordinator
	consumer  SessionConsumer
	log       *logger.Logger
}

func NewRestorationFlow(refresher *Refresher, store *StateStore, mutations *MutationCoordinator, consumer SessionConsumer, log *logger.Logger) *RestorationFlow {
	return &RestorationFlow{
		refresher: refresher,
		store:     store,
		mutations: mutations,
		consumer:  consumer,
		log:       log,
	}
}

// Run executes the restoration. The mutation coordinator is armed on every
// path out of this function, including fetch failure: a failed bootstrap
// leaves an empty store, and the user may still want to reset server state.
// A failed fetch is reported to the consumer as "no active conversation",
// the same as an empty project, so downstream panels never wait on a
// session that will not arrive.
func (f *RestorationFlow) Run(ctx context.Context) (models.SessionInfo, error) {
	defer f.mutations.arm()

	if err := f.refresher.Refresh(ctx); err != nil {
		f.log.Error().Err(err).Msg("session restoration fetch failed")
		if f.consumer != nil {
			f.consumer(models.SessionInfo{})
		}
		return models.SessionInfo{}, fmt.Errorf("restore session: %w", err)
	}

	snap := f.store.Snapshot()
	info := buildSessionInfo(snap)

	if info.HasActiveConversation {
		f.log.Info().
			Int("providers", len(info.Providers)).
			Int("messages", info.MessageCount).
			Msg("restored previous session")
	} else {
		f.log.Info().Msg("no previous session to restore")
	}

	if f.consumer != nil {
		f.consumer(info)
	}
	return info, nil
}

func buildSessionInfo(snap Snapshot) models.SessionInfo {
	providers := activeInDisplayOrder(snap.States)

	info := models.SessionInfo{
		HasActiveConversation: len(providers) > 0,
		Providers:             providers,
		LastActivity:          snap.FetchedAt,
	}
	for _, id := range providers {
		info.MessageCount += snap.States[id].TotalMessages
	}
	return info
}
