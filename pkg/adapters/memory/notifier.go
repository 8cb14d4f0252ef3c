package memory

import (
	"sync"

	"github.com/aretw0/weave/pkg/domain"
)

// Notifier records every notification it receives. Useful for tests and for
// hosts that poll for feedback.
type Notifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

// NewNotifier creates an empty recording notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify implements ports.Notifier.
func (n *Notifier) Notify(x domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, x)
}

// All returns a copy of the recorded notifications in arrival order.
func (n *Notifier) All() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// Last returns the most recent notification.
func (n *Notifier) Last() (domain.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return domain.Notification{}, false
	}
	return n.sent[len(n.sent)-1], true
}

// Reset drops everything recorded so far.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

// Host records snapshots and publications. It implements ports.Host.
type Host struct {
	mu           sync.Mutex
	snapshots    []domain.Snapshot
	publications []domain.Publication
}

// NewHost creates an empty recording host.
func NewHost() *Host {
	return &Host{}
}

func (h *Host) OnChange(s domain.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots, s)
}

func (h *Host) OnPublish(p domain.Publication) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publications = append(h.publications, p)
}

// Snapshots returns the recorded snapshots in arrival order.
func (h *Host) Snapshots() []domain.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Snapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

// Publications returns the recorded publications in arrival order.
func (h *Host) Publications() []domain.Publication {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Publication, len(h.publications))
	copy(out, h.publications)
	return out
}
