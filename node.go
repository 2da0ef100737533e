package reactive

import (
	"log"
	"runtime/debug"

	"github.com/google/uuid"
)

// Unsubscribe removes the listener it was returned from AddListener. It is
// idempotent: calling it more than once has no additional effect. Go func
// values aren't comparable, so callbacks are removed by the closure
// AddListener hands back rather than by asking callers to pass the exact
// fn they registered.
type Unsubscribe func()

type listenerEntry struct {
	id uint64
	fn func()
}

// nodeBase is embedded by Cell, Formula and Subscription. It owns the
// parts of the graph that are identical across all three: a stable
// identity, listener storage with panic-safe fanout, and the set of
// dependent IDs registered against this node (resolved lazily through
// globalRegistry so that a node's dependents never pin live references to
// the dependents themselves; see registry.go).
type nodeBase struct {
	id             uuid.UUID
	nextListenerID uint64
	listeners      []listenerEntry
	dependentIDs   map[uuid.UUID]struct{}
	onPanic        func(r any, stack []byte)
}

func newNodeBase() nodeBase {
	return nodeBase{id: uuid.New(), dependentIDs: make(map[uuid.UUID]struct{})}
}

func (n *nodeBase) ID() uuid.UUID { return n.id }

func (n *nodeBase) listenerCount() int { return len(n.listeners) }
func (n *nodeBase) dependentCount() int { return len(n.dependentIDs) }
func (n *nodeBase) listenedTo() bool { return n.listenerCount() > 0 || n.dependentCount() > 0 }

func (n *nodeBase) addListenerRaw(fn func()) uint64 {
	n.nextListenerID++
	id := n.nextListenerID
	n.listeners = append(n.listeners, listenerEntry{id: id, fn: fn})
	return id
}

func (n *nodeBase) removeListenerRaw(id uint64) {
	for i, l := range n.listeners {
		if l.id == id {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return
		}
	}
}

func (n *nodeBase) addDependentRaw(id uuid.UUID, get func() (dependent, bool)) {
	n.dependentIDs[id] = struct{}{}
	globalRegistry.register(id, get)
}

func (n *nodeBase) removeDependentRaw(id uuid.UUID) {
	if _, ok := n.dependentIDs[id]; !ok {
		return
	}
	delete(n.dependentIDs, id)
	globalRegistry.release(id)
}

// fanout is the shared notify() primitive: call every direct listener
// exactly once, then call notify on every still-live dependent. Listener
// and dependent sets are both snapshotted before iterating, so additions
// made by a listener mid-fanout are only visible on the next notify().
func (n *nodeBase) fanout() {
	snapshot := make([]listenerEntry, len(n.listeners))
	copy(snapshot, n.listeners)
	for _, l := range snapshot {
		callListener(l.fn, n.onPanic)
	}

	ids := make([]uuid.UUID, 0, len(n.dependentIDs))
	for id := range n.dependentIDs {
		ids = append(ids, id)
	}
	for _, id := range ids {
		dep, ok := globalRegistry.lookup(id)
		if !ok {
			delete(n.dependentIDs, id)
			continue
		}
		dep.notify()
	}
}

// callListener runs a single listener with panic recovery. A panicking
// listener never propagates to the writer that triggered the notification:
// the recovered value is reported through onPanic, or logged, in a freshly
// spawned goroutine so that reporting never blocks, or is attributed to,
// the synchronous call that produced the notification.
func callListener(fn func(), onPanic func(r any, stack []byte)) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			go reportPanic(r, stack, onPanic, "listener")
		}
	}()
	fn()
}

func reportPanic(r any, stack []byte, onPanic func(r any, stack []byte), what string) {
	if onPanic != nil {
		onPanic(r, stack)
		return
	}
	log.Printf("reactive: panic in %s: %v\n%s", what, r, stack)
}
