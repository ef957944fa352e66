package reconcile

import (
	"errors"
	"testing"

	"messmate/internal/remote"
)

type fakeSub struct {
	closed bool
}

func (f *fakeSub) Close() { f.closed = true }

func TestRegistry(t *testing.T) {
	t.Run("attach replaces the prior handle", func(t *testing.T) {
		reg := NewRegistry()
		first := &fakeSub{}
		second := &fakeSub{}

		if err := reg.Attach("expenses", func() (remote.Subscription, error) { return first, nil }); err != nil {
			t.Fatalf("Attach failed: %v", err)
		}
		if err := reg.Attach("expenses", func() (remote.Subscription, error) { return second, nil }); err != nil {
			t.Fatalf("Attach failed: %v", err)
		}

		if !first.closed {
			t.Error("Prior handle must be closed before the new one attaches")
		}
		if second.closed {
			t.Error("New handle closed prematurely")
		}
		if !reg.Active("expenses") {
			t.Error("Key should be active after attach")
		}
	})

	t.Run("failed attach leaves the key detached", func(t *testing.T) {
		reg := NewRegistry()
		prior := &fakeSub{}
		if err := reg.Attach("meals", func() (remote.Subscription, error) { return prior, nil }); err != nil {
			t.Fatalf("Attach failed: %v", err)
		}

		attachErr := errors.New("listener rejected")
		err := reg.Attach("meals", func() (remote.Subscription, error) { return nil, attachErr })
		if !errors.Is(err, attachErr) {
			t.Fatalf("Expected attach error, got %v", err)
		}

		if !prior.closed {
			t.Error("Prior handle must be torn down even when reattach fails")
		}
		if reg.Active("meals") {
			t.Error("Key must be detached after a failed attach")
		}
	})

	t.Run("detach and detach all close handles", func(t *testing.T) {
		reg := NewRegistry()
		a := &fakeSub{}
		b := &fakeSub{}
		reg.Attach("a", func() (remote.Subscription, error) { return a, nil })
		reg.Attach("b", func() (remote.Subscription, error) { return b, nil })

		reg.Detach("a")
		if !a.closed || reg.Active("a") {
			t.Error("Detach must close and remove the handle")
		}

		reg.DetachAll()
		if !b.closed || reg.Active("b") {
			t.Error("DetachAll must close every remaining handle")
		}
	})
}
