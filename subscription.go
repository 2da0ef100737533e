package reactive

import "github.com/google/uuid"

// validKind tags a Subscription's cached-validity state: Invalid means the
// cache must be refreshed before use; Always means the cache was validated
// by a read that was not nested in another transaction; TxID means it was
// validated inside a specific enclosing transaction, and repeat reads in
// that same transaction return the cached version at once. While the
// subscription is listened-to, either non-Invalid state is trusted until
// the upstream source calls back; while it is not, any read outside the
// transaction it was validated in refreshes it.
type validKind uint8

const (
	validInvalid validKind = iota
	validAlways
	validTxID
)

type validity struct {
	kind validKind
	txID uint64
}

// Subscription adapts an external, push-based source into the same read
// surface as Cell and Formula. get fetches the current
// value (or an error); add/remove install and uninstall the upstream
// callback that tells the subscription its value may have changed. The
// upstream listener is only installed while the subscription is
// listened-to; an idle subscription with no observers never subscribes
// upstream, and instead calls get fresh on every read (repeat reads within
// one transaction reuse the value fetched by the first).
type Subscription[T any] struct {
	nodeBase
	get    func() (T, error)
	add    func(func())
	remove func(func())
	equal  EqualFunc[T]

	valid      validity
	version    uint64
	completion completion[T]
	hasRun     bool

	upstreamListener func()
}

// NewSubscription constructs a Subscription over an external source.
func NewSubscription[T any](get func() (T, error), add func(func()), remove func(func()), opts ...SubscriptionOption[T]) *Subscription[T] {
	s := &Subscription[T]{
		nodeBase: newNodeBase(),
		get:      get,
		add:      add,
		remove:   remove,
		equal:    defaultEqual[T],
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LatestVersion implements node: it refreshes the cached value from the
// external source when necessary and returns the resulting version.
func (s *Subscription[T]) LatestVersion() uint64 {
	txID, owns := beginTxn()
	defer endTxn(owns)

	if s.valid.kind == validTxID && s.valid.txID == txID {
		return s.version
	}
	if !s.listenedTo() || s.valid.kind == validInvalid {
		s.refresh()
	}
	if owns {
		s.valid = validity{kind: validAlways}
	} else {
		s.valid = validity{kind: validTxID, txID: txID}
	}
	return s.version
}

// refresh invokes the external get, applying the same version-bump policy
// as a Formula's recompute.
func (s *Subscription[T]) refresh() {
	outer := currentFrame
	currentFrame = nil // the external source is not itself a formula read
	next := s.callGet()
	currentFrame = outer

	if !s.hasRun || !sameCompletion(s.completion, next, s.equal) {
		s.version++
		s.completion = next
	}
	s.hasRun = true
}

func (s *Subscription[T]) callGet() (result completion[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = completion[T]{kind: kindAbrupt, abrupt: r}
		}
	}()
	v, err := s.get()
	if err != nil {
		return completion[T]{kind: kindAbrupt, abrupt: err}
	}
	return completion[T]{kind: kindNormal, value: v}
}

// upstreamNotify is the callback installed via add. It mirrors a Formula's
// notify(): already-Invalid is a no-op, otherwise it marks the cache
// Invalid and fans the notification out. The cached completion is left in
// place; refresh's version-bump comparison needs the real prior value, and
// it is refresh that overwrites the completion once a new one has actually
// been fetched.
func (s *Subscription[T]) upstreamNotify() {
	if s.valid.kind == validInvalid {
		return
	}
	s.valid = validity{kind: validInvalid}
	s.fanout()
}

// onListenedToChanged implements the listened-to transitions: becoming
// listened-to invalidates the cache unless it was validated in the
// transaction currently in progress (otherwise it may be stale; the
// upstream source wasn't being watched while unlistened) and installs the
// upstream listener; ceasing to be listened-to removes it.
func (s *Subscription[T]) onListenedToChanged(now bool) {
	if now {
		tied := s.valid.kind == validTxID && s.valid.txID == currentTxID && currentTxID != 0
		if !tied {
			s.valid = validity{kind: validInvalid}
		}
		s.installUpstream()
		return
	}
	s.removeUpstream()
}

func (s *Subscription[T]) installUpstream() {
	if s.upstreamListener != nil {
		return
	}
	cb := func() { s.upstreamNotify() }
	s.upstreamListener = cb
	s.add(cb)
}

func (s *Subscription[T]) removeUpstream() {
	if s.upstreamListener == nil {
		return
	}
	cb := s.upstreamListener
	s.upstreamListener = nil
	s.remove(cb)
}

// AddListener registers fn to be called every time the upstream source
// signals a possible change. fn runs before the value is re-fetched, so it
// also fires when the new value turns out equal to the old one, and it
// fires at most once between reads: an already-invalid subscription
// ignores further upstream callbacks until it is read again. The returned
// Unsubscribe removes it.
func (s *Subscription[T]) AddListener(fn func()) Unsubscribe {
	before := s.listenedTo()
	id := s.addListenerRaw(fn)
	if !before && s.listenedTo() {
		s.onListenedToChanged(true)
	}
	return func() {
		before := s.listenedTo()
		s.removeListenerRaw(id)
		if before && !s.listenedTo() {
			s.onListenedToChanged(false)
		}
	}
}

func (s *Subscription[T]) addDependent(id uuid.UUID, get func() (dependent, bool)) {
	before := s.listenedTo()
	s.addDependentRaw(id, get)
	if !before && s.listenedTo() {
		s.onListenedToChanged(true)
	}
}

func (s *Subscription[T]) removeDependent(id uuid.UUID) {
	before := s.listenedTo()
	s.removeDependentRaw(id)
	if before && !s.listenedTo() {
		s.onListenedToChanged(false)
	}
}

func (s *Subscription[T]) value() T {
	if s.completion.kind == kindAbrupt {
		panic(s.completion.abrupt)
	}
	return s.completion.value
}

// ReadWithoutListening refreshes the subscription as needed and returns
// its value, without recording any dependency.
func (s *Subscription[T]) ReadWithoutListening() T {
	s.LatestVersion()
	return s.value()
}

// ReadInsideFormula refreshes the subscription, records it as a dependency
// of the formula currently being evaluated, and returns its value. It
// panics with OutOfContext outside of any evaluation.
func (s *Subscription[T]) ReadInsideFormula() T {
	frame := getCurrentFrame()
	if frame == nil {
		panic(&EngineError{Code: OutOfContext, Message: "ReadInsideFormula called outside a formula evaluation"})
	}
	ver := s.LatestVersion()
	frame.record(s, s.id, ver)
	return s.value()
}

// AsReadOnly returns a read-only view over s.
func (s *Subscription[T]) AsReadOnly() *ReadOnly[T] { return &ReadOnly[T]{source: s} }
