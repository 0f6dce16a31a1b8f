// Package ledger implements the transaction state machine: the component
// that applies a parsed Transaction to the account map and transaction log
// under strict invariants; this is the heart of the ledger engine.
//
// # Overview
//
// Engine owns two independent internal/kvstore.Map instances — accounts
// keyed by ClientId, and a log of every applied Deposit/Withdrawal keyed by
// TxId — and never nests one inside the other. ProcessTransaction dispatches
// an incoming Transaction to one of five handlers by Kind; each handler
// checks its preconditions, mutates account state through a single held
// kvstore.Handle, and (for Deposit/Withdrawal) appends to the log or (for
// Dispute/Resolve/Chargeback) rewrites the referenced log entry's Disputed
// flag in place. A handler either fully applies its transaction or returns
// one of the sentinel errors in errors.go (or internal/amount's
// ErrAdditionOverflow/ErrSubtractionOverflow) and leaves state untouched.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────┐
//	│                         Engine                           │
//	├─────────────────────────────────────────────────────────┤
//	│  accounts: kvstore.Map[ClientId, Account]                │
//	│  txlog:    kvstore.Map[TxId, Transaction]                │
//	│                                                           │
//	│           ProcessTransaction(Transaction)                │
//	│                        │                                 │
//	│        ┌───────┬───────┼───────┬──────────┐             │
//	│        ▼        ▼       ▼       ▼          ▼             │
//	│   processDeposit  processWithdrawal  processDispute      │
//	│                                     processResolve        │
//	│                                     processChargeback     │
//	│        │                │              │                 │
//	│        └──────┬─────────┴──────┬───────┘                 │
//	│               ▼                ▼                          │
//	│       accounts.Entry(Client)  txlog.Read/Insert(Tx)       │
//	└─────────────────────────────────────────────────────────┘
//
// # Thread safety
//
// Every handler that touches both maps acquires accounts.Entry(r.Client)
// before it reads or mutates a logged transaction and holds that write lock
// until it returns. The only earlier lookups are Contains checks
// (txlog.Contains for Deposit/Withdrawal, accounts.Contains for the others),
// each taken and released on its own with no other lock held. This
// account-map-before-transaction-log ordering is the engine's one canonical
// lock order; every handler obeys it, so two goroutines calling
// ProcessTransaction concurrently — even for the same client — can never
// deadlock against each other. Handlers for different clients proceed
// independently whenever their ClientIds fall in different kvstore shards.
// See internal/kvstore's own Thread safety section for the per-shard
// locking this ordering is built on.
package ledger
