package partition

import "testing"

func TestHashPartitionsAllKeys(t *testing.T) {
	h := NewHash([]string{"a", "b", "c", "d", "e"})
	parts := h.Partitions(3)
	if len(parts) != 3 {
		t.Fatalf("expected 3 partitions, got %d", len(parts))
	}
	total := 0
	for _, p := range parts {
		total += len(p.Keys)
	}
	if total != 5 {
		t.Fatalf("expected all 5 keys assigned, got %d", total)
	}
}

func TestHashPartitionsDeterministic(t *testing.T) {
	h := NewHash([]string{"x", "y", "z"})
	a := h.Partitions(4)
	b := h.Partitions(4)
	for i := range a {
		if len(a[i].Keys) != len(b[i].Keys) {
			t.Fatalf("partitioning not deterministic at index %d", i)
		}
	}
}

func TestHashPartitionsZeroN(t *testing.T) {
	h := NewHash([]string{"a"})
	if parts := h.Partitions(0); parts != nil {
		t.Fatalf("expected nil for n<=0, got %v", parts)
	}
}
