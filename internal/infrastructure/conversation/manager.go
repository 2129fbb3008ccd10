package conversation

import (
	"context"
	"sync"

	"ticketbot/pkg/logger"
)

// Job is one inbound event for a conversation.
type Job func(ctx context.Context)

// queue is the pending work of one conversation. At most one goroutine
// drains a queue at a time, which keeps events of a conversation in order.
type queue struct {
	jobs    []Job
	running bool
}

// Manager runs jobs serially per conversation and concurrently across
// conversations. Idle conversations hold no goroutine.
type Manager struct {
	queues map[int64]*queue
	mutex  sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
}

func NewManager(ctx context.Context) *Manager {
	return &Manager{
		queues: make(map[int64]*queue),
		ctx:    ctx,
	}
}

// Dispatch enqueues job behind any pending work of the conversation.
func (m *Manager) Dispatch(conversationID int64, job Job) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	q, ok := m.queues[conversationID]
	if !ok {
		q = &queue{}
		m.queues[conversationID] = q
	}
	q.jobs = append(q.jobs, job)

	if !q.running {
		q.running = true
		m.wg.Add(1)
		go m.drain(conversationID, q)
	}
}

func (m *Manager) drain(conversationID int64, q *queue) {
	defer m.wg.Done()

	for {
		m.mutex.Lock()
		if len(q.jobs) == 0 {
			q.running = false
			delete(m.queues, conversationID)
			m.mutex.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		m.mutex.Unlock()

		m.run(conversationID, job)
	}
}

func (m *Manager) run(conversationID int64, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Conversation %d: handler panicked: %v", conversationID, r)
		}
	}()
	job(m.ctx)
}

// Active returns the number of conversations with pending or running work.
func (m *Manager) Active() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.queues)
}

// Wait blocks until every dispatched job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}
