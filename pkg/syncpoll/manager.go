package syncpoll

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"prepmail-backend/internal/sync/domain"
)

// ErrConflict is returned by a StatusClient when the server already has
// a run in flight for this user
var ErrConflict = errors.New("sync already in progress")

// Options mirrors the start-sync request body
type Options struct {
	MaxEmails  int  `json:"maxEmails,omitempty"`
	OnlyUnread bool `json:"onlyUnread,omitempty"`
}

// StatusClient talks to the sync endpoints
type StatusClient interface {
	FetchStatus(ctx context.Context) (*domain.SyncStatus, error)
	StartSync(ctx context.Context, opts Options) (*domain.SyncStatus, error)
}

// Callback receives status snapshots. Called synchronously; keep it fast.
type Callback func(status *domain.SyncStatus)

// Manager keeps client-side subscribers fed with sync status while a
// run is in flight. One Manager per signed-in user.
type Manager struct {
	client       StatusClient
	pollInterval time.Duration
	maxBackoff   time.Duration

	mu          sync.Mutex
	subscribers map[int]Callback
	nextSubID   int
	current     *domain.SyncStatus
	polling     bool
	cancelPoll  context.CancelFunc
}

// NewManager creates a Manager polling roughly once a second
func NewManager(client StatusClient) *Manager {
	return &Manager{
		client:       client,
		pollInterval: time.Second,
		maxBackoff:   30 * time.Second,
		subscribers:  make(map[int]Callback),
		current:      &domain.SyncStatus{CurrentStep: domain.StepIdle},
	}
}

// Subscribe registers a callback and immediately invokes it with the
// last known status. The returned function unsubscribes.
func (m *Manager) Subscribe(cb Callback) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = cb
	snapshot := m.current
	m.mu.Unlock()

	cb(snapshot)

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// CheckStatus performs one fetch and notifies subscribers
func (m *Manager) CheckStatus(ctx context.Context) (*domain.SyncStatus, error) {
	status, err := m.client.FetchStatus(ctx)
	if err != nil {
		return nil, err
	}
	m.notify(status)
	return status, nil
}

// TriggerSync asks the server to start a run. Returns false when a run
// is already active, locally or server-side. On success the manager
// polls until the run reaches a terminal status.
func (m *Manager) TriggerSync(ctx context.Context, opts Options) bool {
	m.mu.Lock()
	if m.polling || m.current.IsProcessing {
		m.mu.Unlock()
		return false
	}
	m.polling = true
	m.mu.Unlock()

	// optimistic status so the UI reacts before the first poll lands
	m.notify(&domain.SyncStatus{
		IsProcessing: true,
		CurrentStep:  domain.StepStarting,
	})

	status, err := m.client.StartSync(ctx, opts)
	if err != nil && !errors.Is(err, ErrConflict) {
		log.Printf("[SyncPoll] Failed to start sync: %v", err)
		m.stopPolling()
		m.notify(&domain.SyncStatus{
			CurrentStep: domain.StepFailed,
			Error:       err.Error(),
		})
		return false
	}
	if status != nil {
		m.notify(status)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancelPoll = cancel
	m.mu.Unlock()

	go m.pollLoop(pollCtx)
	return true
}

// Stop cancels any active polling loop
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancelPoll
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.stopPolling()
}

func (m *Manager) pollLoop(ctx context.Context) {
	defer m.stopPolling()

	interval := m.pollInterval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		status, err := m.client.FetchStatus(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// transient network trouble: back off but keep believing
			// the run is alive
			interval *= 2
			if interval > m.maxBackoff {
				interval = m.maxBackoff
			}
			log.Printf("[SyncPoll] Status fetch failed, retrying in %s: %v", interval, err)
			continue
		}

		interval = m.pollInterval
		m.notify(status)

		if status.Terminal() {
			return
		}
	}
}

func (m *Manager) stopPolling() {
	m.mu.Lock()
	m.polling = false
	m.cancelPoll = nil
	m.mu.Unlock()
}

func (m *Manager) notify(status *domain.SyncStatus) {
	m.mu.Lock()
	m.current = status
	cbs := make([]Callback, 0, len(m.subscribers))
	for _, cb := range m.subscribers {
		cbs = append(cbs, cb)
	}
	m.mu.Unlock()

	for _, cb := range cbs {
		cb(status)
	}
}
