package tasks

import "errors"

// ErrIDCollision is returned when no unused task ID could be generated
var ErrIDCollision = errors.New("could not generate a unique task id")

// EventKind says what changed
type EventKind int

const (
	EventLoaded EventKind = iota
	EventAdded
	EventUpdated
	EventDeleted
	EventCleared
	EventParamsChanged
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventDeleted:
		return "deleted"
	case EventCleared:
		return "cleared"
	case EventParamsChanged:
		return "params"
	}
	return "unknown"
}

// Event describes a change to the store. ID is empty for whole-list events.
type Event struct {
	Kind EventKind
	ID   string
}

// Subscribe registers fn to be called after every change. Callbacks run
// synchronously on the goroutine that made the change and must not call
// mutating methods of the store. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) publish(e Event) {
	s.subMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}
