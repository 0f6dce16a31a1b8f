// Package kvstore implements the sharded, concurrency-safe key-value map
// that backs both the account map and the transaction log of the ledger
// engine.
//
// # Overview
//
// A Map[K, V] partitions its key space into a fixed number of shards, each
// an independent map guarded by its own sync.RWMutex. Operations on
// different keys that hash to different shards proceed without contending
// on the same lock; operations on the same key serialize through that key's
// shard. This is the same design the original engine uses, a hand-rolled
// sharded map over tokio::sync::RwLock, adapted to Go's blocking
// sync.RWMutex since the engine's own concurrency model never needs to
// suspend a goroutine mid-lock-hold.
//
// # Architecture
//
//	┌──────────────────────────────────────────────┐
//	│                  Map[K, V]                    │
//	├──────────────────────────────────────────────┤
//	│  shards: [N]*shard[K, V]                      │
//	│                                                │
//	│   shard(key) ──hash──▶ index = h & (N-1)       │
//	│                                                │
//	│   shard[0]  shard[1]  shard[2]  ...  shard[N-1]│
//	│   ┌──────┐  ┌──────┐  ┌──────┐       ┌──────┐ │
//	│   │RWMutex│  │RWMutex│  │RWMutex│ ... │RWMutex│ │
//	│   │ map   │  │ map   │  │ map   │     │ map   │ │
//	│   └──────┘  └──────┘  └──────┘       └──────┘ │
//	└──────────────────────────────────────────────┘
//
// # Thread safety
//
// Every exported method is safe for concurrent use by multiple goroutines.
// Read acquires a shard's read lock; Write, Entry, and Insert acquire a
// shard's write lock. Len and SnapshotIter touch every shard but only ever
// hold one shard's lock at a time, so they never observe a single
// instantaneous snapshot of the whole map — only of one shard at a time,
// which is sufficient for informational counts
// and end-of-session dumps.
//
// # Deadlock avoidance
//
// Map itself never needs more than one lock at a time. The canonical lock
// order required when a caller (the ledger state machine) holds guards on
// two different Maps simultaneously — account map before transaction log —
// is enforced by the caller, not by this package; see internal/ledger.
package kvstore
