package reactive

import "testing"

func TestEffect_RunsImmediately(t *testing.T) {
	var runs int
	ref := Effect(func() { runs++ }, EffectOptions{})
	defer ref.Stop()

	if runs != 1 {
		t.Fatalf("runs immediately after creation = %d, want 1", runs)
	}
}

func TestEffect_RerunsOnDependencyChange(t *testing.T) {
	c := NewCell(1, WithCellEqual(Comparable[int]()))
	var seen []int
	ref := Effect(func() { seen = append(seen, c.ReadInsideFormula()) }, EffectOptions{})
	defer ref.Stop()

	c.Set(2)
	c.Set(3)

	if got := len(seen); got != 3 {
		t.Fatalf("len(seen) = %d, want 3 (initial run + 2 writes)", got)
	}
	if seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("seen = %v, want [1 2 3]", seen)
	}
}

func TestEffect_CleanupRunsBeforeEachRerunAndOnStop(t *testing.T) {
	c := NewCell(1, WithCellEqual(Comparable[int]()))
	var order []string

	ref := EffectWithCleanup(func() func() {
		v := c.ReadInsideFormula()
		order = append(order, "run")
		return func() {
			_ = v
			order = append(order, "cleanup")
		}
	}, EffectOptions{})

	c.Set(2)
	ref.Stop()

	want := []string{"run", "cleanup", "run", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q (full: %v)", i, order[i], want[i], order)
		}
	}
}

func TestEffect_StopIsIdempotent(t *testing.T) {
	c := NewCell(1, WithCellEqual(Comparable[int]()))
	var runs int
	ref := Effect(func() { runs++; c.ReadInsideFormula() }, EffectOptions{})

	ref.Stop()
	ref.Stop()

	c.Set(2)
	if runs != 1 {
		t.Errorf("runs after Stop (called twice) and a write = %d, want 1", runs)
	}
}

func TestEffect_PanicInBodyIsSwallowedNotPropagated(t *testing.T) {
	c := NewCell(1, WithCellEqual(Comparable[int]()))
	var reported any
	ref := EffectWithCleanup(func() func() {
		if c.ReadInsideFormula() == 2 {
			panic("effect exploded")
		}
		return nil
	}, EffectOptions{OnPanic: func(r any, stack []byte) { reported = r }})
	defer ref.Stop()

	c.Set(2) // must not panic out of Set

	if reported != "effect exploded" {
		t.Errorf("reported = %#v, want \"effect exploded\"", reported)
	}
}
