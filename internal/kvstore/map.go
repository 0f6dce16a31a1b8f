package kvstore

import "sync"

// DefaultShards is the default number of shards a Map partitions its key
// space into when none is specified. It must remain a power of two so the
// shard index can be computed with a mask instead of a modulo.
const DefaultShards = 64

// multiplier is the fxhash/FNV-style odd multiplicative constant used to
// spread integer keys across shards (the same constant fxhash uses).
const multiplier = 0x517cc1b727220a95

// HashKey returns a reasonably uniform hash for any key whose natural
// representation is an unsigned integer (ClientId, TxId, ...). It is the
// Hasher most callers in this module want.
func HashKey[K ~uint16 | ~uint32 | ~uint64 | ~uint](k K) uint64 {
	return uint64(k) * multiplier
}

// shard is one partition of a Map: an ordinary Go map guarded by its own
// reader-writer lock.
type shard[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// Map is a key-value store partitioned into a fixed number of independently
// locked shards. See doc.go for the full design rationale.
type Map[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	mask   uint64
}

// New creates a Map with numShards shards (rounded up internally is not
// performed — numShards must already be a power of two; DefaultShards
// satisfies this). hash computes the shard-selection hash for a key.
func New[K comparable, V any](numShards int, hash func(K) uint64) *Map[K, V] {
	if numShards <= 0 {
		numShards = DefaultShards
	}
	shards := make([]*shard[K, V], numShards)
	for i := range shards {
		shards[i] = &shard[K, V]{data: make(map[K]V)}
	}
	return &Map[K, V]{
		shards: shards,
		hash:   hash,
		mask:   uint64(numShards - 1),
	}
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return m.shards[m.hash(key)&m.mask]
}

// Read returns the value stored for key and whether it was present, taken
// under the owning shard's read lock. Multiple concurrent readers on the
// same shard are allowed.
func (m *Map[K, V]) Read(key K) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Contains reports whether key is present in the map.
func (m *Map[K, V]) Contains(key K) bool {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Insert stores value under key, returning the previous value (if any) and
// whether one existed. Acquires the owning shard's exclusive lock.
func (m *Map[K, V]) Insert(key K, value V) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.data[key]
	s.data[key] = value
	return prev, had
}

// Write acquires the owning shard's exclusive lock and invokes fn with the
// stored value and whether it was present. If key is absent, fn receives the
// zero value when insertIfAbsent is true and is not called at all otherwise.
// fn's return value is stored under key. This is the single-callback way of expressing "take an exclusive
// guard on the shard, read or mutate the key's value, release the guard"
// without requiring a guard type that can be returned across a function
// boundary.
func (m *Map[K, V]) Write(key K, insertIfAbsent bool, fn func(value V, present bool) V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, present := s.data[key]
	if !present && !insertIfAbsent {
		return
	}
	s.data[key] = fn(v, present)
}

// Handle is an exclusive guard on one shard, scoped to a single key, in the
// style of a Rust RwLockWriteGuard combined with a map entry lookup. Get and
// Set read and write the guarded key's value while the shard's write lock is
// held; Unlock releases it. A Handle must not be used after Unlock is
// called.
type Handle[K comparable, V any] struct {
	s   *shard[K, V]
	key K
}

// Get returns the current value stored under the handle's key.
func (h *Handle[K, V]) Get() V {
	return h.s.data[h.key]
}

// Set stores v under the handle's key.
func (h *Handle[K, V]) Set(v V) {
	h.s.data[h.key] = v
}

// Unlock releases the shard's exclusive lock. Must be called exactly once.
func (h *Handle[K, V]) Unlock() {
	h.s.mu.Unlock()
}

// Entry acquires the owning shard's exclusive lock, inserting the zero value
// for key if absent, and returns a Handle the caller must Unlock exactly
// once when done mutating through it.
//
// Entry exists because the ledger state machine (internal/ledger) needs to
// hold the account shard's write lock across several sequential field
// mutations and, per the canonical lock order, across acquiring a second
// Map's lock for the transaction log — a single atomic callback as in Write
// cannot express that without nesting the transaction-log lookup inside the
// account callback, which would make the lock order implicit and easy to
// get backwards.
func (m *Map[K, V]) Entry(key K) *Handle[K, V] {
	s := m.shardFor(key)
	s.mu.Lock()
	if _, present := s.data[key]; !present {
		var zero V
		s.data[key] = zero
	}
	return &Handle[K, V]{s: s, key: key}
}

// Len returns the total number of entries across all shards, computed by
// summing per-shard sizes under each shard's read lock in turn. Not observed
// atomically across shards: a concurrent writer can make this count stale
// the instant after any one shard is read. Acceptable since Len is
// informational only.
func (m *Map[K, V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.data)
		s.mu.RUnlock()
	}
	return total
}

// SnapshotIter calls yield once for every (key, value) pair in the map,
// shard by shard, each shard's pairs observed under that shard's own read
// lock. yield returning false stops iteration early. No cross-shard
// consistency is promised: a shard iterated early may have since changed by
// the time a later shard is visited.
func (m *Map[K, V]) SnapshotIter(yield func(key K, value V) bool) {
	for _, s := range m.shards {
		if !snapshotShard(s, yield) {
			return
		}
	}
}

// snapshotShard copies one shard's entries under its read lock and then
// invokes yield for each, outside the lock, so a slow consumer never holds
// up the shard's other readers/writers.
func snapshotShard[K comparable, V any](s *shard[K, V], yield func(key K, value V) bool) bool {
	s.mu.RLock()
	pairs := make([]struct {
		k K
		v V
	}, 0, len(s.data))
	for k, v := range s.data {
		pairs = append(pairs, struct {
			k K
			v V
		}{k, v})
	}
	s.mu.RUnlock()

	for _, p := range pairs {
		if !yield(p.k, p.v) {
			return false
		}
	}
	return true
}
