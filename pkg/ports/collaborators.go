package ports

import (
	"context"

	"github.com/aretw0/weave/pkg/domain"
)

// OptionsProvider supplies the choices of a select-like field type
// (status, priority, assignee, team, story_points). It may be slow.
// An unknown field type yields an empty list.
type OptionsProvider interface {
	FetchOptions(ctx context.Context, fieldType string) ([]string, error)
}

// Notifier receives user-facing notifications. Nothing is returned to the caller.
type Notifier interface {
	Notify(n domain.Notification)
}

// Host is the application embedding the editor.
type Host interface {
	// OnChange receives the {nodes, edges} snapshot after every graph mutation.
	OnChange(s domain.Snapshot)
	// OnPublish receives the published graph and its distinct variable references.
	OnPublish(p domain.Publication)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(domain.Notification)

func (f NotifierFunc) Notify(n domain.Notification) { f(n) }

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(domain.Notification) {}

// NopHost discards every snapshot and publication.
type NopHost struct{}

func (NopHost) OnChange(domain.Snapshot) {}
func (NopHost) OnPublish(domain.Publication) {}
