package reactive

import "github.com/google/uuid"

// dependent is anything that can sit on the receiving end of a push
// notification: today, only *Formula[T]. It is deliberately narrower than
// node (it does not need LatestVersion or the dependent-management
// methods) because the registry only ever needs to call notify on it.
type dependent interface {
	ID() uuid.UUID
	notify()
}

// node is the read side of a dependency: anything a Formula can record in
// its evaluation frame and later ask "has this changed".
type node interface {
	ID() uuid.UUID
	LatestVersion() uint64
	addDependent(id uuid.UUID, get func() (dependent, bool))
	removeDependent(id uuid.UUID)
}

// registryEntry holds a weak getter for one dependent plus a reference
// count of how many distinct dependency edges currently point at it. Using
// a weak getter rather than a direct pointer means a Formula that stops
// being referenced anywhere else in the program can still be collected
// even while one of its former dependencies still lists its ID as a
// dependent ("ownership of back-edges").
type registryEntry struct {
	get  func() (dependent, bool)
	refs int
}

// depRegistry is the process-wide table mapping a dependent's ID to a weak
// getter for it. It is plain, unsynchronized map state: the engine is
// single-threaded cooperative (see SPEC_FULL.md REDESIGN FLAG 1), so every
// call into any node in any graph must already be serialized by the
// caller, and that includes registry access.
type depRegistry struct {
	entries map[uuid.UUID]*registryEntry
}

var globalRegistry = &depRegistry{entries: make(map[uuid.UUID]*registryEntry)}

func (r *depRegistry) register(id uuid.UUID, get func() (dependent, bool)) {
	e, ok := r.entries[id]
	if !ok {
		e = &registryEntry{get: get}
		r.entries[id] = e
	}
	e.refs++
}

func (r *depRegistry) release(id uuid.UUID) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.entries, id)
	}
}

// lookup resolves a dependent by ID, pruning the entry if the weak getter
// reports the dependent has already been collected.
func (r *depRegistry) lookup(id uuid.UUID) (dependent, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	d, alive := e.get()
	if !alive {
		delete(r.entries, id)
		return nil, false
	}
	return d, true
}
