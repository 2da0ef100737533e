package reactive

import "github.com/google/uuid"

// currentTxID and currentFrame are the two pieces of dynamically scoped
// state the engine threads through a call into the graph: a transaction ID
// that lets a Formula validate each of its dependencies at most once per
// outermost read, and an evaluation frame that records which nodes the
// formula currently being recomputed reads from.
//
// Both are plain package variables rather than goroutine-local state
// because the engine is single-threaded cooperative: nothing here is safe
// to call from two goroutines at once (see SPEC_FULL.md REDESIGN FLAG 1).
var (
	nextTxID    uint64 = 1
	currentTxID uint64 // 0 means "no transaction in progress"
)

// beginTxn allocates a fresh transaction ID for the outermost call into the
// graph, or reuses the one already in progress for a nested call. owns
// reports whether this call allocated the ID (and therefore must clear it
// again via endTxn).
func beginTxn() (txID uint64, owns bool) {
	if currentTxID == 0 {
		currentTxID = nextTxID
		nextTxID++
		return currentTxID, true
	}
	return currentTxID, false
}

// endTxn clears the active transaction if this call owns it.
func endTxn(owns bool) {
	if owns {
		currentTxID = 0
	}
}

// depEntry is one row of a formula's dependency set: the node read, the ID
// it was registered under, and the version observed on the read that
// produced the formula's current cached value.
type depEntry struct {
	id      uuid.UUID
	nd      node
	version uint64
}

// depSet is a formula's recorded dependency set: insertion-ordered, with
// at most one entry per node ID. Subscriptions keep no dependency set.
type depSet struct {
	entries []*depEntry
	index   map[uuid.UUID]int
}

func newDepSet() *depSet {
	return &depSet{index: make(map[uuid.UUID]int)}
}

// record adds or updates the entry for nd, keeping the position of the
// first read stable across repeated reads of the same node within one
// evaluation.
func (s *depSet) record(nd node, id uuid.UUID, version uint64) {
	if i, ok := s.index[id]; ok {
		s.entries[i].version = version
		return
	}
	s.index[id] = len(s.entries)
	s.entries = append(s.entries, &depEntry{id: id, nd: nd, version: version})
}

// currentFrame is the evaluation frame of the formula currently being
// recomputed, or nil if no formula is being recomputed. ReadInsideFormula
// fails with OutOfContext when this is nil.
var currentFrame *depSet

func getCurrentFrame() *depSet { return currentFrame }
