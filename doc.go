// Package reactive implements a pull-based reactive computation graph.
//
// Three kinds of node compose the graph:
//
// - Cell holds a mutable value set directly by calling code.
// - Formula memoizes a derived value computed from other nodes, read
// automatically during its own compute function.
// - Subscription adapts an external push-based source (a get/add/remove
// triple) into the same read surface as a Cell or Formula.
//
// Reads come in two flavors. ReadInsideFormula is only valid while a
// Formula (or Effect) is evaluating; it both returns the current value and
// records the node as a dependency of the evaluating formula, so that
// formula recomputes on its next read after the value changes (an Effect
// re-runs as soon as it is notified). ReadWithoutListening returns the
// current value without establishing any dependency and is the only read
// form valid outside of an evaluation.
//
// The graph is lazy by default: a Formula does not recompute until
// something reads it, no matter how many times its dependencies change in
// between. Writes to a Cell still propagate push-style notifications to
// any Formula or raw listener that is currently "listened to" (has at
// least one listener or dependent of its own), so that UI-style code can
// react to changes without polling.
//
// The engine is single-threaded and cooperative: none of its types use
// internal locking, and all calls into a given graph must be serialized by
// the caller (see REDESIGN FLAG 1 in SPEC_FULL.md).
package reactive
