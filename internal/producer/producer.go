package producer

import (
	"context"
	"fmt"
	"sync"

	"github.com/codelens/driftscan/internal/settings"
)

// Target describes what a producer analyzes: a project root plus the active
// settings snapshot.
type Target struct {
	Root     string
	Settings settings.Settings
}

// Producer is one independent analysis source. Producers run concurrently
// and must not share mutable state; each returns its own Result.
type Producer interface {
	// Name returns the fixed producer identifier (SourceIssues, SourceDocs
	// or SourceCode).
	Name() string

	// Enabled reports whether the settings snapshot turns this producer on.
	Enabled(cfg settings.Settings) bool

	// Analyze examines the target and returns a structured result. Analyze
	// must honor ctx cancellation; a cancelled or failed producer degrades
	// to an absent result, it never fails the scan.
	Analyze(ctx context.Context, target Target) (*Result, error)
}

// Registry holds the registered producers keyed by name.
type Registry struct {
	mu        sync.RWMutex
	producers map[string]Producer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{producers: make(map[string]Producer)}
}

// Register adds a producer. Registering an unknown or duplicate name is an
// error.
func (r *Registry) Register(p Producer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if !KnownSource(name) {
		return fmt.Errorf("unknown producer id %q", name)
	}
	if _, exists := r.producers[name]; exists {
		return fmt.Errorf("producer %q already registered", name)
	}
	r.producers[name] = p
	return nil
}

// Get returns a registered producer by name.
func (r *Registry) Get(name string) (Producer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.producers[name]
	return p, ok
}

// Enabled returns the registered producers the settings turn on, in
// canonical source order.
func (r *Registry) Enabled(cfg settings.Settings) []Producer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var enabled []Producer
	for _, id := range SourceIDs() {
		if p, ok := r.producers[id]; ok && p.Enabled(cfg) {
			enabled = append(enabled, p)
		}
	}
	return enabled
}
