package remote

import (
	"context"
	"maps"
	"sort"
	"sync"
)

// Ensure MemoryStore implements DocumentStore
var _ DocumentStore = (*MemoryStore)(nil)

// MemoryStore is an in-process DocumentStore used by tests and local
// development. Writes are visible to all subscriptions of the same store,
// so two "devices" sharing one MemoryStore behave like two devices sharing
// the hosted remote store.
type MemoryStore struct {
	mu    sync.Mutex
	colls map[string]map[string]map[string]any
	subs  map[string][]*memorySub
}

type memorySub struct {
	store      *MemoryStore
	collection string
	ch         chan Snapshot
	done       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colls: make(map[string]map[string]map[string]any),
		subs:  make(map[string][]*memorySub),
	}
}

// Set writes the document and fans the collection's new snapshot out to its
// subscribers.
func (m *MemoryStore) Set(ctx context.Context, collection, docID string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	coll := m.colls[collection]
	if coll == nil {
		coll = make(map[string]map[string]any)
		m.colls[collection] = coll
	}
	coll[docID] = maps.Clone(fields)
	snap := m.snapshotLocked(collection)
	subs := append([]*memorySub(nil), m.subs[collection]...)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(snap)
	}
	return nil
}

// Delete removes a document, if present, and republishes the snapshot.
// Used by tests to model a remote-side deletion.
func (m *MemoryStore) Delete(ctx context.Context, collection, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.colls[collection], docID)
	snap := m.snapshotLocked(collection)
	subs := append([]*memorySub(nil), m.subs[collection]...)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(snap)
	}
	return nil
}

// Get returns a copy of one document's fields and whether it exists.
func (m *MemoryStore) Get(collection, docID string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.colls[collection][docID]
	if !ok {
		return nil, false
	}
	return maps.Clone(fields), true
}

// Len returns the number of documents in the collection.
func (m *MemoryStore) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.colls[collection])
}

// Subscribe attaches a snapshot listener. Each subscription runs its own
// delivery goroutine so fn is invoked serially; a slow subscriber coalesces
// intermediate snapshots (latest wins), matching the full-snapshot contract.
func (m *MemoryStore) Subscribe(ctx context.Context, collection string, fn func(Snapshot)) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &memorySub{
		store:      m,
		collection: collection,
		ch:         make(chan Snapshot, 1),
		done:       make(chan struct{}),
	}

	m.mu.Lock()
	m.subs[collection] = append(m.subs[collection], sub)
	initial := m.snapshotLocked(collection)
	m.mu.Unlock()

	go func() {
		for {
			select {
			case snap := <-sub.ch:
				fn(snap)
			case <-sub.done:
				return
			case <-ctx.Done():
				sub.Close()
				return
			}
		}
	}()

	sub.deliver(initial)
	return sub, nil
}

func (m *MemoryStore) snapshotLocked(collection string) Snapshot {
	coll := m.colls[collection]
	docs := make([]Document, 0, len(coll))
	for id, fields := range coll {
		docs = append(docs, Document{ID: id, Fields: maps.Clone(fields)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return Snapshot{Docs: docs}
}

func (s *memorySub) deliver(snap Snapshot) {
	select {
	case <-s.done:
		return
	default:
	}
	// Latest snapshot wins; stale intermediates are dropped.
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Close detaches the subscription.
func (s *memorySub) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		m := s.store
		m.mu.Lock()
		subs := m.subs[s.collection]
		for i, other := range subs {
			if other == s {
				m.subs[s.collection] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
	})
}
