package reactive

import "testing"

// BenchmarkEffect_RerunOnWrite measures the cost of one dependency write
// driving one effect re-run.
func BenchmarkEffect_RerunOnWrite(b *testing.B) {
	c := NewCell(0, WithCellEqual(Comparable[int]()))
	ref := Effect(func() { _ = c.ReadInsideFormula() }, EffectOptions{})
	defer ref.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(i)
	}
}

// BenchmarkEffect_CreateAndStop measures setup/teardown cost.
func BenchmarkEffect_CreateAndStop(b *testing.B) {
	c := NewCell(0, WithCellEqual(Comparable[int]()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ref := Effect(func() { _ = c.ReadInsideFormula() }, EffectOptions{})
		ref.Stop()
	}
}
