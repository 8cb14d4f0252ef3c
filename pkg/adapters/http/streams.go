package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// StreamManager fans workflow changes out to SSE subscribers. It implements
// ports.Host: every snapshot is diffed against the previous one of the same
// workflow and the diff is broadcast as a "diff" event.
type StreamManager struct {
	logger *slog.Logger
	next   ports.Host

	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{} // WorkflowID -> set of channels
	last        map[string]domain.Snapshot
}

var _ ports.Host = (*StreamManager)(nil)

// StreamOption configures a StreamManager.
type StreamOption func(*StreamManager)

// WithStreamLogger sets the logger used for dropped messages.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(sm *StreamManager) {
		sm.logger = logger
	}
}

// WithNextHost forwards every snapshot and publication to h as well.
func WithNextHost(h ports.Host) StreamOption {
	return func(sm *StreamManager) {
		sm.next = h
	}
}

func NewStreamManager(opts ...StreamOption) *StreamManager {
	sm := &StreamManager{
		logger:      logging.NewNop(),
		next:        ports.NopHost{},
		subscribers: make(map[string]map[chan Event]struct{}),
		last:        make(map[string]domain.Snapshot),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Subscribe registers a listener for one workflow. The returned function
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(workflowID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	if _, ok := sm.subscribers[workflowID]; !ok {
		sm.subscribers[workflowID] = make(map[chan Event]struct{})
	}
	sm.subscribers[workflowID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[workflowID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, workflowID)
				}
			}
		})
	}
}

// Broadcast sends ev to every subscriber of workflowID. Slow subscribers
// lose the event.
func (sm *StreamManager) Broadcast(workflowID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[workflowID] {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("sse buffer full, dropping event", "workflow", workflowID, "event", ev.Name)
		}
	}
}

// OnChange broadcasts the difference to the previous snapshot of the workflow.
func (sm *StreamManager) OnChange(s domain.Snapshot) {
	sm.mu.Lock()
	prev, seen := sm.last[s.WorkflowID]
	sm.last[s.WorkflowID] = s
	sm.mu.Unlock()

	var diff *domain.GraphDiff
	if seen {
		diff = domain.Diff(&prev, &s)
	} else {
		diff = domain.Diff(nil, &s)
	}
	if diff != nil {
		sm.send(s.WorkflowID, "diff", diff)
	}
	sm.next.OnChange(s)
}

// OnPublish broadcasts the published workflow as a "publish" event.
func (sm *StreamManager) OnPublish(p domain.Publication) {
	sm.send(p.WorkflowID, "publish", p)
	sm.next.OnPublish(p)
}

// Forget drops the remembered snapshot of a closed workflow.
func (sm *StreamManager) Forget(workflowID string) {
	sm.mu.Lock()
	delete(sm.last, workflowID)
	sm.mu.Unlock()
}

func (sm *StreamManager) send(workflowID, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("failed to encode sse event", "event", name, "err", err)
		return
	}
	sm.Broadcast(workflowID, Event{Name: name, Data: string(data)})
}
