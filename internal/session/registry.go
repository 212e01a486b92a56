package session

import "sort"

type entry struct {
	session *Session
	seq     uint64
}

// Registry holds the open sessions, one per category, remembering the order
// in which they were added. It does no locking of its own.
type Registry struct {
	slots map[Category]entry
	seq   uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[Category]entry, 4)}
}

// Append stores s as the most recent session. If its category was already
// taken, the previous occupant is returned so the caller can close it.
func (r *Registry) Append(s *Session) (displaced *Session) {
	if old, ok := r.slots[s.Category]; ok {
		displaced = old.session
	}
	r.seq++
	r.slots[s.Category] = entry{session: s, seq: r.seq}
	return displaced
}

// Find returns the session in category.
func (r *Registry) Find(c Category) (*Session, bool) {
	e, ok := r.slots[c]
	return e.session, ok
}

// FindID returns the session with the given id.
func (r *Registry) FindID(id uint64) (*Session, bool) {
	for _, e := range r.slots {
		if e.session.ID == id {
			return e.session, true
		}
	}
	return nil, false
}

// RemoveAndClose closes the session in category and then drops it. The
// entry is dropped even when close fails: the handle is gone either way.
func (r *Registry) RemoveAndClose(c Category, closeFn func(*Session) error) (*Session, error) {
	e, ok := r.slots[c]
	if !ok {
		return nil, nil
	}
	var err error
	if closeFn != nil {
		err = closeFn(e.session)
	}
	delete(r.slots, c)
	return e.session, err
}

// MostRecent returns the last appended session still present.
func (r *Registry) MostRecent() (*Session, bool) {
	var best entry
	for _, e := range r.slots {
		if e.seq > best.seq {
			best = e
		}
	}
	return best.session, best.session != nil
}

// All returns the sessions in insertion order.
func (r *Registry) All() []*Session {
	entries := make([]entry, 0, len(r.slots))
	for _, e := range r.slots {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]*Session, len(entries))
	for i, e := range entries {
		out[i] = e.session
	}
	return out
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	return len(r.slots)
}
