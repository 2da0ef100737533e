package reactive

import "runtime/debug"

// EffectRef stops a running Effect. Stop is idempotent.
type EffectRef interface {
	Stop()
}

// Effect runs fn immediately, then again every time a Cell/Formula/
// Subscription it read during its last run changes. Dependencies are
// discovered automatically, the same way a Formula's are; there is no
// explicit dependency list.
func Effect(fn func(), opts EffectOptions) EffectRef {
	return EffectWithCleanup(func() func() { fn(); return nil }, opts)
}

// EffectWithCleanup is like Effect, but fn may return a cleanup function.
// The cleanup from the previous run is always called before fn runs again,
// and one final time when the effect is stopped.
func EffectWithCleanup(fn func() func(), opts EffectOptions) EffectRef {
	e := &effectImpl{fn: fn, onPanic: opts.OnPanic}

	// The effect body lives inside an ordinary Formula so it gets
	// automatic dependency tracking, lazy/once-per-transaction
	// validation and the invalidation-push machinery for free; the
	// formula's own value is never read by anyone but the effect's
	// driving listener below, so its type and equality are irrelevant.
	e.formula = NewFormula(func() struct{} {
		e.runCleanup()
		e.cleanup = e.fn()
		return struct{}{}
	}, WithFormulaOnPanic[struct{}](opts.OnPanic))

	e.unsub = e.formula.AddListener(func() { e.forceRun() })
	e.forceRun()

	return e
}

type effectImpl struct {
	fn      func() func()
	cleanup func()
	formula *Formula[struct{}]
	unsub   Unsubscribe
	stopped bool
	onPanic func(r any, stack []byte)
}

// forceRun drives a (re)run of the effect's formula. It is used both for
// the initial immediate run and for every subsequent invalidation: a panic
// from the effect body surfaces here as the formula's Abrupt completion
// being re-raised by ReadWithoutListening, and is recovered and reported
// through OnPanic (or logged) rather than propagating to whatever
// triggered the underlying write. Unlike a listener panic, which is
// reported from a separate goroutine, it is reported synchronously, before
// forceRun returns.
func (e *effectImpl) forceRun() {
	defer func() {
		if r := recover(); r != nil {
			reportPanic(r, debug.Stack(), e.onPanic, "effect")
		}
	}()
	e.formula.ReadWithoutListening()
}

func (e *effectImpl) runCleanup() {
	if e.cleanup == nil {
		return
	}
	c := e.cleanup
	e.cleanup = nil
	defer func() {
		if r := recover(); r != nil {
			reportPanic(r, debug.Stack(), e.onPanic, "effect cleanup")
		}
	}()
	c()
}

// Stop unsubscribes the effect from its dependencies and runs the final
// cleanup. Calling Stop more than once has no additional effect.
func (e *effectImpl) Stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	e.unsub()
	e.runCleanup()
}
