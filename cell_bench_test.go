package reactive

import "testing"

// BenchmarkCell_ReadWithoutListening measures read performance.
func BenchmarkCell_ReadWithoutListening(b *testing.B) {
	c := NewCell(42, WithCellEqual(Comparable[int]()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.ReadWithoutListening()
	}
}

// BenchmarkCell_Set measures write performance with no listeners.
func BenchmarkCell_Set(b *testing.B) {
	c := NewCell(0, WithCellEqual(Comparable[int]()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(i)
	}
}

// BenchmarkCell_SetWithListeners measures write performance fanning out to
// several listeners.
func BenchmarkCell_SetWithListeners(b *testing.B) {
	c := NewCell(0, WithCellEqual(Comparable[int]()))
	for i := 0; i < 10; i++ {
		c.AddListener(func() {})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(i)
	}
}
