package kvstore

import (
	"sync"
	"testing"
)

func u32Hash(k uint32) uint64 { return HashKey(k) }

func TestInsertAndRead(t *testing.T) {
	m := New[uint32, string](DefaultShards, u32Hash)

	if _, ok := m.Read(1); ok {
		t.Fatal("expected empty map to have no entries")
	}

	prev, had := m.Insert(1, "one")
	if had {
		t.Fatalf("expected no previous value, got %q", prev)
	}

	v, ok := m.Read(1)
	if !ok || v != "one" {
		t.Fatalf("Read(1) = (%q, %v), want (\"one\", true)", v, ok)
	}

	prev, had = m.Insert(1, "uno")
	if !had || prev != "one" {
		t.Fatalf("Insert should report previous value \"one\", got (%q, %v)", prev, had)
	}
}

func TestContains(t *testing.T) {
	m := New[uint32, int](DefaultShards, u32Hash)
	if m.Contains(42) {
		t.Fatal("fresh map should not contain 42")
	}
	m.Insert(42, 1)
	if !m.Contains(42) {
		t.Fatal("map should contain 42 after insert")
	}
}

func TestEntryInsertsZeroValueAndMutates(t *testing.T) {
	type counter struct{ n int }

	m := New[uint32, counter](DefaultShards, u32Hash)

	h := m.Entry(7)
	c := h.Get()
	if c.n != 0 {
		t.Fatalf("Entry should have inserted zero value, got %+v", c)
	}
	c.n = 5
	h.Set(c)
	h.Unlock()

	got, ok := m.Read(7)
	if !ok || got.n != 5 {
		t.Fatalf("Read(7) = (%+v, %v), want ({5}, true)", got, ok)
	}
}

func TestWriteSkipsAbsentWhenNotInserting(t *testing.T) {
	m := New[uint32, int](DefaultShards, u32Hash)
	called := false
	m.Write(1, false, func(v int, present bool) int {
		called = true
		return v
	})
	if called {
		t.Fatal("Write should not invoke fn for an absent key when insertIfAbsent is false")
	}
	if m.Contains(1) {
		t.Fatal("Write should not have inserted a key")
	}
}

func TestLenSumsAcrossShards(t *testing.T) {
	m := New[uint32, int](4, u32Hash)
	for i := uint32(0); i < 100; i++ {
		m.Insert(i, int(i))
	}
	if got := m.Len(); got != 100 {
		t.Fatalf("Len() = %d, want 100", got)
	}
}

func TestSnapshotIterVisitsEveryEntry(t *testing.T) {
	m := New[uint32, int](8, u32Hash)
	want := map[uint32]int{}
	for i := uint32(0); i < 50; i++ {
		m.Insert(i, int(i)*2)
		want[i] = int(i) * 2
	}

	got := map[uint32]int{}
	m.SnapshotIter(func(k uint32, v int) bool {
		got[k] = v
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("SnapshotIter visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("key %d: got %d, want %d", k, got[k], v)
		}
	}
}

func TestSnapshotIterStopsEarly(t *testing.T) {
	m := New[uint32, int](8, u32Hash)
	for i := uint32(0); i < 50; i++ {
		m.Insert(i, int(i))
	}

	count := 0
	m.SnapshotIter(func(k uint32, v int) bool {
		count++
		return count < 5
	})
	if count != 5 {
		t.Fatalf("SnapshotIter should have stopped after 5 calls, got %d", count)
	}
}

func TestConcurrentInsertsAreRaceFree(t *testing.T) {
	m := New[uint32, int](DefaultShards, u32Hash)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(base uint32) {
			defer wg.Done()
			for i := uint32(0); i < 1000; i++ {
				m.Insert(base*1000+i, int(i))
			}
		}(uint32(g))
	}
	wg.Wait()

	if got := m.Len(); got != 8000 {
		t.Fatalf("Len() = %d, want 8000", got)
	}
}
