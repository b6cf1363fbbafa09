package metrics

import "testing"

// BenchmarkCollector_LineReceived measures the per-line counter overhead
// paid on the inbound hot path.
func BenchmarkCollector_LineReceived(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.LineReceived()
		c.BytesReceived(512)
	}
}

// BenchmarkCollector_Snapshot measures the cost of taking a snapshot.
func BenchmarkCollector_Snapshot(b *testing.B) {
	c := New()
	c.Connected()
	c.BytesSent(1024)
	c.RecordError("test")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}
