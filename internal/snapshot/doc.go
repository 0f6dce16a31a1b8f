// Package snapshot implements dump and reload of a ledger.Engine's full
// state as two plain CSV row streams.
//
// Dump takes no global lock: it walks each kvstore shard under that shard's
// own lock via ledger.Engine.Accounts/Transactions, so a concurrent writer
// can still observe a torn, per-shard-consistent view of a store that is
// still being mutated. This is acceptable because dumps are
// assumed to run after ingestion has finished.
//
// Reload is explicitly unsafe against corrupt input: it inserts rows into
// an empty engine without re-validating available+held==total or any other
// invariant. A corrupt snapshot can seed an engine whose first subsequent
// Dispute overflows — that is the intended defensive behaviour, not a bug.
package snapshot
