package repository

import (
	"context"
	"sync"
	"time"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/repository"
	"ticketbot/pkg/logger"
)

// MemoryDialogueRepository keeps dialogue drafts in process memory and drops
// drafts that have not been touched for ttl.
type MemoryDialogueRepository struct {
	states map[int64]*entity.DialogueState
	ttl    time.Duration
	now    func() time.Time
	mutex  sync.RWMutex
}

var _ repository.DialogueRepository = (*MemoryDialogueRepository)(nil)

func NewMemoryDialogueRepository(ttl time.Duration) *MemoryDialogueRepository {
	return &MemoryDialogueRepository{
		states: make(map[int64]*entity.DialogueState),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *MemoryDialogueRepository) Get(ctx context.Context, conversationID int64) (*entity.DialogueState, bool, error) {
	r.mutex.RLock()
	state, ok := r.states[conversationID]
	r.mutex.RUnlock()

	if !ok || r.expired(state) {
		return nil, false, nil
	}
	return state, true, nil
}

func (r *MemoryDialogueRepository) Save(ctx context.Context, state *entity.DialogueState) error {
	state.UpdatedAt = r.now()

	r.mutex.Lock()
	r.states[state.ConversationID] = state
	r.mutex.Unlock()
	return nil
}

func (r *MemoryDialogueRepository) Delete(ctx context.Context, conversationID int64) error {
	r.mutex.Lock()
	delete(r.states, conversationID)
	r.mutex.Unlock()
	return nil
}

func (r *MemoryDialogueRepository) expired(state *entity.DialogueState) bool {
	return r.ttl > 0 && r.now().Sub(state.UpdatedAt) > r.ttl
}

// Len reports how many drafts are held, expired ones included.
func (r *MemoryDialogueRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.states)
}

// Cleanup removes drafts idle for longer than the ttl.
func (r *MemoryDialogueRepository) Cleanup() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for id, state := range r.states {
		if r.expired(state) {
			delete(r.states, id)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine evicts expired drafts every interval until ctx ends.
func (r *MemoryDialogueRepository) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := r.Cleanup(); n > 0 {
					logger.Debug("Evicted %d idle dialogues", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
