// Package service holds the client-side session coordinator: the state store,
// the periodic refresher with stale-result discard, the startup restoration
// flow, and the confirmation-gated mutation coordinator.
package service

import (
	"github.com/luozhen/go-chat-keeper/internal/adapter"
	"github.com/luozhen/go-chat-keeper/internal/logger"
)

// ClientServices bundles the coordinator components wired for one project.
type ClientServices struct {
	Store       *StateStore
	Refresher   *Refresher
	Mutations   *MutationCoordinator
	Restoration *RestorationFlow
}

// NewClientServices wires the coordinator against a conversation service.
// The consumer receives the restored SessionInfo once Restoration.Run
// completes; pass nil if no announcement is needed.
func NewClientServices(svc adapter.ConversationService, projectID string, consumer SessionConsumer, log *logger.Logger) *ClientServices {
	store := NewStateStore()
	refresher := NewRefresher(svc, store, projectID, log)
	mutations := NewMutationCoordinator(svc, store, refresher, projectID, log)
	restoration := NewRestorationFlow(refresher, store, mutations, consumer, log)

	return &ClientServices{
		Store:       store,
		Refresher:   refresher,
		Mutations:   mutations,
		Restoration: restoration,
	}
}

// Close shuts down the periodic refresh loop and freezes the store at its
// last accepted snapshot.
func (s *ClientServices) Close() {
	s.Refresher.Close()
}
