// Package partition provides the partitioner capability referenced by the
// logical plan validator: an operator "implements the partitioner
// capability" by satisfying Partitioner, and the validator only needs to
// know that the capability exists, not how partitions are computed at
// runtime.
package partition

import "hash/fnv"

// Partition is one assignment produced by a Partitioner: a partition index
// and the keys it owns.
type Partition struct {
	Index int
	Keys  []string
}

// Partitioner is the capability a user operator's Go type implements to
// describe how it divides work across n physical instances. The logical
// plan only cares that the capability is present (plan.PartitionerCapable);
// it never calls Partitions itself.
type Partitioner interface {
	Partitions(n int) []Partition
}

// Hash is the default partitioner: an FNV-hash round-robin assignment of
// a fixed key set, restated as a pure function since the logical plan
// has no runtime fan-out to drive.
type Hash struct {
	Keys []string
}

func NewHash(keys []string) *Hash {
	return &Hash{Keys: keys}
}

func (h *Hash) Partitions(n int) []Partition {
	if n <= 0 {
		return nil
	}
	out := make([]Partition, n)
	for i := range out {
		out[i] = Partition{Index: i}
	}
	for _, k := range h.Keys {
		idx := int(fnvHash(k) % uint64(n))
		out[idx].Keys = append(out[idx].Keys, k)
	}
	return out
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
