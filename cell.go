package reactive

import "github.com/google/uuid"

// Cell is a mutable source node: the leaves of the computation graph.
// Every ReadInsideFormula records the cell as a dependency of the formula
// being evaluated, and every Set that changes the cell's value (per its
// EqualFunc) pushes a notification to its listeners and dependents.
type Cell[T any] struct {
	nodeBase
	value     T
	version   uint64
	equal     EqualFunc[T]
	scheduler Scheduler
	pending   bool
}

// NewCell constructs a Cell holding initial.
func NewCell[T any](initial T, opts ...CellOption[T]) *Cell[T] {
	c := &Cell[T]{
		nodeBase: newNodeBase(),
		value:    initial,
		equal:    defaultEqual[T],
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores v. If the cell has an active scheduler, the resulting
// notification is deferred; otherwise it fires inline before Set returns.
// Set panics with OutOfContext if called while a formula is mid-evaluation:
// cells may not be written from inside a compute function.
func (c *Cell[T]) Set(v T) {
	if getCurrentFrame() != nil {
		panic(&EngineError{Code: OutOfContext, Message: "Set called from inside a formula evaluation"})
	}
	if c.equal(c.value, v) {
		return
	}
	c.version++
	c.value = v
	if c.scheduler == nil {
		c.fanout()
		return
	}
	if c.pending {
		return
	}
	c.pending = true
	c.scheduler(func() {
		c.pending = false
		c.fanout()
	})
}

// ReadWithoutListening returns the cell's current value without recording
// any dependency.
func (c *Cell[T]) ReadWithoutListening() T { return c.value }

// ReadInsideFormula returns the cell's current value and, if called from
// inside a formula evaluation, records the cell as a dependency of that
// formula. It panics with OutOfContext outside of any evaluation.
func (c *Cell[T]) ReadInsideFormula() T {
	frame := getCurrentFrame()
	if frame == nil {
		panic(&EngineError{Code: OutOfContext, Message: "ReadInsideFormula called outside a formula evaluation"})
	}
	frame.record(c, c.id, c.version)
	return c.value
}

// AddListener registers fn to be called (with no arguments) every time the
// cell's value changes. The returned Unsubscribe removes it.
func (c *Cell[T]) AddListener(fn func()) Unsubscribe {
	id := c.addListenerRaw(fn)
	return func() { c.removeListenerRaw(id) }
}

// LatestVersion implements node for dependents of this cell.
func (c *Cell[T]) LatestVersion() uint64 { return c.version }

func (c *Cell[T]) addDependent(id uuid.UUID, get func() (dependent, bool)) {
	c.addDependentRaw(id, get)
}

func (c *Cell[T]) removeDependent(id uuid.UUID) {
	c.removeDependentRaw(id)
}

// AsReadOnly returns a read-only view over c that exposes the read surface
// but not Set.
func (c *Cell[T]) AsReadOnly() *ReadOnly[T] { return &ReadOnly[T]{source: c} }
