package reconcile

import (
	"fmt"
	"sync"

	"messmate/internal/remote"
)

// Registry tracks live remote subscriptions and enforces the invariant that
// at most one handle per (collection, scope) key is active on a device.
// Attaching a key always tears down the prior handle first, so listener
// re-attachment (connectivity regained, view re-entered) can never leak.
type Registry struct {
	mu      sync.Mutex
	handles map[string]remote.Subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]remote.Subscription)}
}

// Attach closes any existing handle under key, then installs the handle
// produced by attach. When attach fails, the key is left detached.
func (r *Registry) Attach(key string, attach func() (remote.Subscription, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, ok := r.handles[key]; ok {
		prior.Close()
		delete(r.handles, key)
	}

	sub, err := attach()
	if err != nil {
		return fmt.Errorf("failed to attach %s: %w", key, err)
	}
	r.handles[key] = sub
	return nil
}

// Detach closes and removes the handle under key, if any.
func (r *Registry) Detach(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.handles[key]; ok {
		sub.Close()
		delete(r.handles, key)
	}
}

// DetachAll closes every handle. Used on logout and app teardown.
func (r *Registry) DetachAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, sub := range r.handles {
		sub.Close()
		delete(r.handles, key)
	}
}

// Active reports whether a handle is attached under key.
func (r *Registry) Active(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[key]
	return ok
}
