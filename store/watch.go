package store

import (
	"sync"
)

// Subscription is a live watch on a document or collection path. C
// yields an immediate snapshot on subscribe and a fresh one after every
// committed change touching the path. Consecutive changes may coalesce
// into a single snapshot; every snapshot reflects committed state only.
type Subscription struct {
	C <-chan Snapshot

	path string
	ch   chan Snapshot
	kick chan struct{}
	done chan struct{}
	once sync.Once
}

// Cancel tears the subscription down and closes C. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() { close(s.done) })
}

// watchBus fans committed changes out to subscriptions. Both store
// implementations share it; they call notify after a batch commits.
type watchBus struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func newWatchBus() *watchBus {
	return &watchBus{subs: make(map[string]map[*Subscription]struct{})}
}

// subscribe registers a watch on path. load must return the current
// snapshot for the path; it is called once up front and once per wake.
func (b *watchBus) subscribe(path string, load func(path string) Snapshot) *Subscription {
	s := &Subscription{
		path: path,
		ch:   make(chan Snapshot, 1),
		kick: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	s.C = s.ch

	b.mu.Lock()
	if b.subs[path] == nil {
		b.subs[path] = make(map[*Subscription]struct{})
	}
	b.subs[path][s] = struct{}{}
	b.mu.Unlock()

	go s.pump(b, load)
	return s
}

func (s *Subscription) pump(b *watchBus, load func(path string) Snapshot) {
	defer func() {
		b.remove(s)
		close(s.ch)
	}()

	// Initial snapshot fires before any change arrives.
	if !s.deliver(load(s.path)) {
		return
	}
	for {
		select {
		case <-s.done:
			return
		case <-s.kick:
			if !s.deliver(load(s.path)) {
				return
			}
		}
	}
}

func (s *Subscription) deliver(snap Snapshot) bool {
	// Once Cancel has returned no further snapshot may be delivered,
	// even if one was already queued for this wake.
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- snap:
		return true
	case <-s.done:
		return false
	}
}

func (b *watchBus) remove(s *Subscription) {
	b.mu.Lock()
	if set := b.subs[s.path]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, s.path)
		}
	}
	b.mu.Unlock()
}

// notify wakes every subscription watching any of the written document
// paths or their parent collections.
func (b *watchBus) notify(docPaths []string) {
	seen := make(map[string]struct{}, len(docPaths)*2)
	for _, p := range docPaths {
		seen[p] = struct{}{}
		if c := Collection(p); c != "" {
			seen[c] = struct{}{}
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for path := range seen {
		for s := range b.subs[path] {
			select {
			case s.kick <- struct{}{}:
			default: // a wake is already pending, snapshots coalesce
			}
		}
	}
}
