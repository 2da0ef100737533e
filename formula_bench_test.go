package reactive

import "testing"

// BenchmarkFormula_ReadMemoized measures repeated reads of an up-to-date
// formula (the common case: the validation short-circuit dominates).
func BenchmarkFormula_ReadMemoized(b *testing.B) {
	c := NewCell(1, WithCellEqual(Comparable[int]()))
	f := NewFormula(func() int {
		return c.ReadInsideFormula() * 2
	}, WithFormulaEqual(Comparable[int]()))
	f.ReadWithoutListening()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.ReadWithoutListening()
	}
}

// BenchmarkFormula_ReadAfterEachWrite measures the recompute path: every
// read follows a write that actually changes the dependency's version.
func BenchmarkFormula_ReadAfterEachWrite(b *testing.B) {
	c := NewCell(0, WithCellEqual(Comparable[int]()))
	f := NewFormula(func() int {
		return c.ReadInsideFormula() * 2
	}, WithFormulaEqual(Comparable[int]()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(i)
		_ = f.ReadWithoutListening()
	}
}

// BenchmarkFormula_DiamondChain measures validation through a chain of
// formulas, exercising the once-per-transaction short-circuit.
func BenchmarkFormula_DiamondChain(b *testing.B) {
	c := NewCell(0, WithCellEqual(Comparable[int]()))
	f1 := NewFormula(func() int { return c.ReadInsideFormula() }, WithFormulaEqual(Comparable[int]()))
	f2 := NewFormula(func() int { return f1.ReadInsideFormula() + 1 }, WithFormulaEqual(Comparable[int]()))
	f3 := NewFormula(func() int { return f1.ReadInsideFormula() + f2.ReadInsideFormula() }, WithFormulaEqual(Comparable[int]()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(i)
		_ = f3.ReadWithoutListening()
	}
}
