package plan

import "testing"

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := newOrderedMap[string, int]()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)

	got := m.Keys()
	want := []string{"c", "a", "b"}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("keys[%d] = %q, want %q", i, got[i], k)
		}
	}
}

func TestOrderedMapSetTwiceDoesNotReorder(t *testing.T) {
	m := newOrderedMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99)

	got := m.Keys()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected key order after re-set: %v", got)
	}
	v, ok := m.Get("a")
	if !ok || v != 99 {
		t.Fatalf("Get(a) = %v, %v, want 99, true", v, ok)
	}
}

func TestOrderedMapDelete(t *testing.T) {
	m := newOrderedMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Delete("b")

	if _, ok := m.Get("b"); ok {
		t.Fatalf("expected b to be deleted")
	}
	if got := m.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected keys after delete: %v", got)
	}
}
