package reactive

import "reflect"

type completionKind uint8

const (
	kindNormal completionKind = iota
	kindAbrupt
)

// completion is the tagged union calls Completion: either a
// Normal value of type T, or an Abrupt payload carrying whatever a
// compute/get function panicked with or returned as an error.
type completion[T any] struct {
	kind completionKind
	value T
	abrupt any
}

// sameCompletion implements the version-bump policy of step
// 5: two completions of different kind are never equal; two Normal
// completions are compared with the node's equality function; two Abrupt
// completions are compared with sameAbrupt, since a panic/error payload has
// no node-specific EqualFunc.
func sameCompletion[T any](old, next completion[T], eq EqualFunc[T]) bool {
	if old.kind != next.kind {
		return false
	}
	if old.kind == kindAbrupt {
		return sameAbrupt(old.abrupt, next.abrupt)
	}
	return eq(old.value, next.value)
}

// sameAbrupt compares two panic/error payloads. Payloads of the same
// comparable dynamic type are compared with `==` (so two distinct pointers,
// such as two separately created errors, are not equal); non-comparable
// dynamic types (e.g. a panic value that is a slice) and payloads of
// differing types fall back to reflect.DeepEqual rather than risking a
// runtime panic from `==`.
func sameAbrupt(a, b any) bool {
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.IsValid() && bv.IsValid() && av.Type() == bv.Type() && av.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
