package bus

import "sync"

// registry is the room → member-set map. Rooms are created on first join,
// pruned when the last member leaves, and recreated transparently on the
// next join. All mutation happens under the single registry lock; publish
// takes a snapshot under the same lock and delivers outside it.
type registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Subscriber
}

func newRegistry() *registry {
	return &registry{
		rooms: make(map[string]map[string]Subscriber),
	}
}

func (r *registry) join(address string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[address]
	if !ok {
		members = make(map[string]Subscriber)
		r.rooms[address] = members
	}

	members[sub.ID()] = sub
}

// leave reports whether the subscriber was actually removed, so callers
// can keep gauges honest under concurrent leave calls.
func (r *registry) leave(address string, sub Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[address]
	if !ok {
		return false
	}

	if _, ok := members[sub.ID()]; !ok {
		return false
	}

	delete(members, sub.ID())
	if len(members) == 0 {
		delete(r.rooms, address)
	}

	return true
}

// snapshot returns the members joined at call time.
func (r *registry) snapshot(address string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[address]
	if !ok {
		return nil
	}

	subs := make([]Subscriber, 0, len(members))
	for _, sub := range members {
		subs = append(subs, sub)
	}

	return subs
}

func (r *registry) count(address string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[address])
}

func (r *registry) total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, members := range r.rooms {
		n += len(members)
	}

	return n
}

func (r *registry) clear() []Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	var subs []Subscriber
	for _, members := range r.rooms {
		for _, sub := range members {
			subs = append(subs, sub)
		}
	}

	r.rooms = make(map[string]map[string]Subscriber)
	return subs
}
