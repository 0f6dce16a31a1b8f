// Package pipeline decouples record parsing from record application: a
// producer goroutine drives internal/codec over a byte stream and pushes
// parsed records onto a bounded channel, while a consumer goroutine applies
// them to a shared ledger.Engine in arrival order.
//
// # Overview
//
// Pipeline.Run drives one stream. RunConcurrent fans multiple independent
// Pipeline.Run calls out over the same engine with a second
// golang.org/x/sync/errgroup.Group — correctness of concurrent ingestion
// follows from the account/transaction-log maps' per-shard locking plus the
// engine's canonical lock order, not from anything in this package.
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                          Pipeline.Run                          │
//	├───────────────────────────────────────────────────────────────┤
//	│   producer goroutine            item chan          consumer    │
//	│  ┌──────────────────┐        (size BufferSize)   ┌───────────┐ │
//	│  │ codec.Reader.Rows │  ──item{tx}/item{err}──▶  │  for it := │ │
//	│  │  (recover panic   │                            │  range ch │ │
//	│  │   on ctx.Done)    │ ◀──────ctx.Done()───────── │  ...      │ │
//	│  └──────────────────┘                            └─────┬─────┘ │
//	│                                                          │       │
//	│                                                          ▼       │
//	│                                          e.ProcessTransaction(tx)│
//	│                                              (ledger.Engine)     │
//	└───────────────────────────────────────────────────────────────┘
//
// RunConcurrent repeats the box above once per reader, all N producer/
// consumer pairs pointed at the same *ledger.Engine, supervised by one
// outer errgroup.Group:
//
//	RunConcurrent
//	  ├─ Pipeline.Run(reader[0]) ─┐
//	  ├─ Pipeline.Run(reader[1]) ─┼─▶ shared *ledger.Engine
//	  └─ Pipeline.Run(reader[N]) ─┘
//
// # Thread safety
//
// This package holds no locks of its own; the channel handoff already
// serializes each stream's records into one consumer goroutine per
// Pipeline.Run, so within a single stream transactions apply in file order.
// Safety across the concurrent consumer goroutines RunConcurrent starts
// comes entirely from internal/ledger's Engine: every handler that touches
// both the account map and the transaction log acquires the account entry
// first and only then reads or writes logged transactions (an earlier
// txlog.Contains check holds no other lock), the same
// account-then-transaction-log order regardless of which goroutine is
// calling. Two consumers racing to apply transactions for the same client
// simply serialize on that client's account shard lock; consumers for
// different clients proceed independently whenever their ClientIds land in
// different internal/kvstore shards. This package never needs to coordinate
// that ordering itself — it only needs to call ProcessTransaction and let
// the engine enforce it.
package pipeline
