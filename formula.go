package reactive

import (
	"weak"

	"github.com/google/uuid"
)

// Formula is a memoized derived computation. It is born Invalid with no
// dependency set and does not run its compute function until something
// reads it; from then on it recomputes at most once per transaction, and
// only when it has been invalidated by a push notification or at least
// one of its recorded dependencies has actually changed version.
type Formula[T any] struct {
	nodeBase
	compute func() T
	equal   EqualFunc[T]

	valid      uint64 // 0 means Invalid; otherwise the TxID it was last validated in
	version    uint64
	completion completion[T]
	deps       *depSet // nil until the first evaluation

	selfGetter func() (dependent, bool)
}

// NewFormula constructs a Formula whose value is produced by compute.
// compute may read any number of Cell/Formula/Subscription values via
// ReadInsideFormula; every such read is recorded automatically, there is
// no explicit dependency list to pass in.
func NewFormula[T any](compute func() T, opts ...FormulaOption[T]) *Formula[T] {
	f := &Formula[T]{
		nodeBase: newNodeBase(),
		compute: compute,
		equal: defaultEqual[T],
	}
	for _, opt := range opts {
		opt(f)
	}
	wp := weak.Make(f)
	f.selfGetter = func() (dependent, bool) {
		v := wp.Value()
		if v == nil {
			return nil, false
		}
		return v, true
	}
	return f
}

// LatestVersion implements node. Reading a formula's version is what
// drives the pull: it recursively validates f (and, transitively, every
// formula f depends on) before returning, so a dependent that only ever
// calls LatestVersion on its dependencies never sees a stale version.
func (f *Formula[T]) LatestVersion() uint64 {
	f.validate()
	return f.version
}

// validate implements the ten-step validation protocol.
func (f *Formula[T]) validate() {
	txID, owns := beginTxn()
	defer endTxn(owns)

	// Step 2: already validated in this transaction.
	if f.valid == txID {
		return
	}

	// Step 3: decide whether a recompute is needed. A formula that has
	// never evaluated (deps == nil) or was explicitly invalidated
	// (valid == 0) always recomputes; otherwise walk the recorded
	// dependency set and recompute if any dependency's version has moved
	// past what was observed last time. Reading d.LatestVersion() here is
	// itself the recursive pull for formula/subscription dependencies.
	recompute := f.deps == nil || f.valid == 0
	if !recompute {
		for _, e := range f.deps.entries {
			if e.nd.LatestVersion() > e.version {
				recompute = true
				break
			}
		}
	}

	if recompute {
		f.recompute()
	}

	// Step 8: mark validated for this transaction regardless of whether a
	// recompute actually happened.
	f.valid = txID
}

// recompute implements the recompute steps: run compute with a
// fresh evaluation frame, apply the version-bump policy, swap in the new
// dependency set, and (only if currently listened-to) diff the old and new
// dependency sets to update dependent registrations.
func (f *Formula[T]) recompute() {
	outer := currentFrame
	frame := newDepSet()
	currentFrame = frame
	next := f.runCompute()
	currentFrame = outer

	hadPrior := f.deps != nil
	if !hadPrior || !sameCompletion(f.completion, next, f.equal) {
		f.version++
		f.completion = next
	}

	old := f.deps
	f.deps = frame

	if f.listenedTo() {
		f.diffDeps(old, frame)
	}
}

// runCompute executes compute with panic recovery, turning a panic into an
// Abrupt completion rather than letting it escape the evaluation frame
// management in recompute.
func (f *Formula[T]) runCompute() (result completion[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = completion[T]{kind: kindAbrupt, abrupt: r}
		}
	}()
	v := f.compute()
	return completion[T]{kind: kindNormal, value: v}
}

// diffDeps implements a single pass over the new
// dependency set doing a destructive lookup in the old set (entries found
// in both need no change), followed by a pass over whatever remains in the
// old set (dependencies no longer read, which must be detached).
func (f *Formula[T]) diffDeps(old, next *depSet) {
	var oldByID map[uuid.UUID]*depEntry
	if old != nil {
		oldByID = make(map[uuid.UUID]*depEntry, len(old.entries))
		for _, e := range old.entries {
			oldByID[e.id] = e
		}
	}

	for _, e := range next.entries {
		if _, existed := oldByID[e.id]; existed {
			delete(oldByID, e.id)
			continue
		}
		e.nd.addDependent(f.id, f.selfGetter)
	}
	for _, e := range oldByID {
		e.nd.removeDependent(f.id)
	}
}

// notify pushes invalidation rather than recomputing eagerly.
// A formula that is already Invalid is a no-op (the diamond-dependency
// de-duplication the spec calls for); otherwise it goes Invalid and fans
// the notification out to its own listeners and dependents. notify leaves
// the cached completion in place: recompute's version-bump comparison
// needs the real prior value, not a cleared placeholder, and it is
// recompute that overwrites the completion once a new one has actually
// been produced. notify also never touches the dependency set or
// dependent registrations; those survive until the next recompute.
func (f *Formula[T]) notify() {
	if f.valid == 0 {
		return
	}
	f.valid = 0
	f.fanout()
}

// onListenedToChanged implements two transitions: a formula that becomes
// listened-to must attach itself as a
// dependent of everything it currently reads (triggering a first
// evaluation if it has never run); a formula that stops being listened-to
// must detach from everything.
func (f *Formula[T]) onListenedToChanged(now bool) {
	if now {
		if f.deps == nil {
			f.validate()
			return
		}
		for _, e := range f.deps.entries {
			e.nd.addDependent(f.id, f.selfGetter)
		}
		return
	}
	if f.deps != nil {
		for _, e := range f.deps.entries {
			e.nd.removeDependent(f.id)
		}
	}
}

// AddListener registers fn to be called every time the formula is
// invalidated by a change to one of its dependencies (push-mode). fn runs
// before any recompute, so it also fires when the recomputed value turns
// out equal to the old one, and it fires at most once between reads: an
// already-invalid formula ignores further notifications until it is read
// again. The returned Unsubscribe removes it.
func (f *Formula[T]) AddListener(fn func()) Unsubscribe {
	before := f.listenedTo()
	id := f.addListenerRaw(fn)
	if !before && f.listenedTo() {
		f.onListenedToChanged(true)
	}
	return func() {
		before := f.listenedTo()
		f.removeListenerRaw(id)
		if before && !f.listenedTo() {
			f.onListenedToChanged(false)
		}
	}
}

func (f *Formula[T]) addDependent(id uuid.UUID, get func() (dependent, bool)) {
	before := f.listenedTo()
	f.addDependentRaw(id, get)
	if !before && f.listenedTo() {
		f.onListenedToChanged(true)
	}
}

func (f *Formula[T]) removeDependent(id uuid.UUID) {
	before := f.listenedTo()
	f.removeDependentRaw(id)
	if before && !f.listenedTo() {
		f.onListenedToChanged(false)
	}
}

// value extracts the current completion, re-raising an abrupt one.
func (f *Formula[T]) value() T {
	if f.completion.kind == kindAbrupt {
		panic(f.completion.abrupt)
	}
	return f.completion.value
}

// ReadWithoutListening validates the formula and returns its value,
// without recording any dependency.
func (f *Formula[T]) ReadWithoutListening() T {
	f.validate()
	return f.value()
}

// ReadInsideFormula validates the formula, records it as a dependency of
// the formula currently being evaluated, and returns its value. It panics
// with OutOfContext outside of any evaluation.
func (f *Formula[T]) ReadInsideFormula() T {
	frame := getCurrentFrame()
	if frame == nil {
		panic(&EngineError{Code: OutOfContext, Message: "ReadInsideFormula called outside a formula evaluation"})
	}
	f.validate()
	frame.record(f, f.id, f.version)
	return f.value()
}

// AsReadOnly returns a read-only view over f. Formulas have no mutators of
// their own, but this keeps the read surface uniform with Cell and
// Subscription.
func (f *Formula[T]) AsReadOnly() *ReadOnly[T] { return &ReadOnly[T]{source: f} }
