package memory

import (
	"context"
	"time"
)

// DefaultAssigneeLatency simulates the slow people-directory lookup.
const DefaultAssigneeLatency = 300 * time.Millisecond

var staticOptions = map[string][]string{
	"status":       {"To Do", "In Progress", "In Review", "Completed"},
	"priority":     {"Low", "Medium", "High", "Urgent"},
	"assignee":     {"John Doe", "Jane Smith", "Alex Johnson", "Sam Wilson"},
	"team":         {"Engineering", "Design", "Marketing", "Sales", "Support"},
	"story_points": {"1", "2", "3", "5", "8", "13"},
}

// OptionsProvider implements ports.OptionsProvider with fixed lists.
type OptionsProvider struct {
	// Latency delays assignee lookups. Zero disables the delay.
	Latency time.Duration
}

// NewOptionsProvider creates a provider with the given assignee latency.
func NewOptionsProvider(latency time.Duration) *OptionsProvider {
	return &OptionsProvider{Latency: latency}
}

// FetchOptions returns the choices for fieldType, or an empty list when the
// type is unknown. It honours ctx cancellation while waiting.
func (p *OptionsProvider) FetchOptions(ctx context.Context, fieldType string) ([]string, error) {
	if fieldType == "assignee" && p.Latency > 0 {
		timer := time.NewTimer(p.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	opts, ok := staticOptions[fieldType]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, len(opts))
	copy(out, opts)
	return out, nil
}
