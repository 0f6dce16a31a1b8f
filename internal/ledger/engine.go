package ledger

import (
	"github.com/ledgerforge/txnengine/internal/amount"
	"github.com/ledgerforge/txnengine/internal/kvstore"
)

// Engine is the transaction state machine: two independently sharded maps —
// accounts keyed by ClientId and a durable log of Deposit/Withdrawal
// transactions keyed by TxId.
//
// The two maps are never nested inside one another: every cross-reference
// (a logged transaction's Client, an account's disputed records) is resolved
// by lookup, never by embedding one structure inside the other.
type Engine struct {
	accounts *kvstore.Map[ClientId, Account]
	txlog    *kvstore.Map[TxId, Transaction]
}

// New constructs an empty Engine.
func New() *Engine {
	return &Engine{
		accounts: kvstore.New[ClientId, Account](kvstore.DefaultShards, kvstore.HashKey[ClientId]),
		txlog:    kvstore.New[TxId, Transaction](kvstore.DefaultShards, kvstore.HashKey[TxId]),
	}
}

// ApproxSize returns the current number of accounts and logged transactions,
// for telemetry only.
func (e *Engine) ApproxSize() (accounts, logged int) {
	return e.accounts.Len(), e.txlog.Len()
}

// Accounts calls yield once for every (ClientId, Account) pair currently
// held, in the style of kvstore.Map.SnapshotIter. Used by internal/snapshot
// to dump the account table.
func (e *Engine) Accounts(yield func(ClientId, Account) bool) {
	e.accounts.SnapshotIter(yield)
}

// Transactions calls yield once for every logged Transaction, in the style
// of kvstore.Map.SnapshotIter. Used by internal/snapshot to dump the
// transaction log.
func (e *Engine) Transactions(yield func(TxId, Transaction) bool) {
	e.txlog.SnapshotIter(yield)
}

// LoadAccount inserts an account directly, without invariant validation.
// Used only by internal/snapshot's Reload, which is explicitly unsafe
// against corrupt input.
func (e *Engine) LoadAccount(id ClientId, acc Account) {
	e.accounts.Insert(id, acc)
}

// LoadTransaction inserts a logged transaction directly, without invariant
// validation. See LoadAccount.
func (e *Engine) LoadTransaction(t Transaction) {
	e.txlog.Insert(t.Tx, t)
}

// ProcessTransaction dispatches r to the handler for its Kind and applies it
// to the engine's state. It is the single entry point the pipeline and the
// batch driver both call.
func (e *Engine) ProcessTransaction(r Transaction) error {
	switch r.Kind {
	case KindDeposit:
		return e.processDeposit(r)
	case KindWithdrawal:
		return e.processWithdrawal(r)
	case KindDispute:
		return e.processDispute(r)
	case KindResolve:
		return e.processResolve(r)
	case KindChargeback:
		return e.processChargeback(r)
	default:
		return ErrUnknownKind
	}
}

// processDeposit applies a Deposit record.
func (e *Engine) processDeposit(r Transaction) error {
	if !r.HasAmount() {
		return ErrNoAmount
	}
	if !r.Amount.IsPositive() {
		return ErrDepositAmountInvalid
	}
	if e.txlog.Contains(r.Tx) {
		return ErrTransactionRepeated
	}
	// An amount beyond Bound overflows even against a zero balance; reject it
	// before Entry so a failed first deposit never creates an account.
	if _, err := amount.Add(amount.Zero(), *r.Amount); err != nil {
		return err
	}

	h := e.accounts.Entry(r.Client)
	defer h.Unlock()

	acc := h.Get()
	if acc.Locked {
		return ErrAccountLocked
	}

	newAvailable, err := amount.Add(acc.Available, *r.Amount)
	if err != nil {
		return err
	}
	newTotal, err := amount.Add(acc.Total, *r.Amount)
	if err != nil {
		return err
	}
	acc.Available = newAvailable
	acc.Total = newTotal
	h.Set(acc)

	e.txlog.Insert(r.Tx, Transaction{Kind: KindDeposit, Client: r.Client, Tx: r.Tx, Amount: r.Amount})
	return nil
}

// processWithdrawal applies a Withdrawal record. Unlike Deposit, a withdrawal never
// creates an account: it fails AccountNotFound against a client with no
// prior activity.
func (e *Engine) processWithdrawal(r Transaction) error {
	if !r.HasAmount() {
		return ErrNoAmount
	}
	if !r.Amount.IsPositive() {
		return ErrWithdrawalAmountInvalid
	}
	if e.txlog.Contains(r.Tx) {
		return ErrTransactionRepeated
	}
	if !e.accounts.Contains(r.Client) {
		return ErrAccountNotFound
	}

	h := e.accounts.Entry(r.Client)
	defer h.Unlock()

	acc := h.Get()
	if acc.Locked {
		return ErrAccountLocked
	}
	if !acc.Available.GreaterThanOrEqual(*r.Amount) {
		return ErrInsufficientFunds
	}

	newAvailable, err := amount.Sub(acc.Available, *r.Amount)
	if err != nil {
		return err
	}
	newTotal, err := amount.Sub(acc.Total, *r.Amount)
	if err != nil {
		return err
	}
	acc.Available = newAvailable
	acc.Total = newTotal
	h.Set(acc)

	e.txlog.Insert(r.Tx, Transaction{Kind: KindWithdrawal, Client: r.Client, Tx: r.Tx, Amount: r.Amount})
	return nil
}

// disputeAmount returns the signed movement s used by Dispute/Resolve/
// Chargeback for a referenced transaction: the referenced
// amount as-is for a Deposit, negated for a Withdrawal (the withdrawal was
// an outflow, so reversing it into held means holding a negative amount
// while restoring available).
func disputeAmount(referenced Transaction) amount.Amount {
	if referenced.Kind == KindWithdrawal {
		return amount.Negate(*referenced.Amount)
	}
	return *referenced.Amount
}

// processDispute applies a Dispute record. An account is never auto-created by a
// Dispute: Entry would insert a zero-value Account for an unknown client,
// masking what must be an AccountNotFound error, so existence is checked
// with Contains before Entry is ever called.
func (e *Engine) processDispute(r Transaction) error {
	if !e.accounts.Contains(r.Client) {
		return ErrAccountNotFound
	}

	h := e.accounts.Entry(r.Client)
	defer h.Unlock()

	acc := h.Get()
	if acc.Locked {
		return ErrAccountLocked
	}

	referenced, ok := e.txlog.Read(r.Tx)
	if !ok {
		return ErrTransactionNotFound
	}
	if referenced.Client != r.Client {
		return ErrDifferentClient
	}
	if referenced.Disputed {
		return ErrTransactionAlreadyDisputed
	}
	if !referenced.HasAmount() {
		return ErrReferredTransactionNoAmount
	}

	s := disputeAmount(referenced)
	newAvailable, err := amount.Sub(acc.Available, s)
	if err != nil {
		return err
	}
	newHeld, err := amount.Add(acc.Held, s)
	if err != nil {
		return err
	}
	acc.Available = newAvailable
	acc.Held = newHeld
	h.Set(acc)

	referenced.Disputed = true
	e.txlog.Insert(referenced.Tx, referenced)
	return nil
}

// processResolve applies a Resolve record, the inverse of Dispute.
func (e *Engine) processResolve(r Transaction) error {
	if !e.accounts.Contains(r.Client) {
		return ErrAccountNotFound
	}

	h := e.accounts.Entry(r.Client)
	defer h.Unlock()

	acc := h.Get()
	if acc.Locked {
		return ErrAccountLocked
	}

	referenced, ok := e.txlog.Read(r.Tx)
	if !ok {
		return ErrTransactionNotFound
	}
	if referenced.Client != r.Client {
		return ErrDifferentClient
	}
	if !referenced.Disputed {
		return ErrTransactionNotDisputed
	}
	if !referenced.HasAmount() {
		return ErrReferredTransactionNoAmount
	}

	s := disputeAmount(referenced)
	newAvailable, err := amount.Add(acc.Available, s)
	if err != nil {
		return err
	}
	newHeld, err := amount.Sub(acc.Held, s)
	if err != nil {
		return err
	}
	acc.Available = newAvailable
	acc.Held = newHeld
	h.Set(acc)

	referenced.Disputed = false
	e.txlog.Insert(referenced.Tx, referenced)
	return nil
}

// processChargeback applies a Chargeback record. The referenced record's Disputed
// flag is left set: once charged back a record is terminally disputed, and
// the account is locked, suppressing all further monetary activity.
func (e *Engine) processChargeback(r Transaction) error {
	if !e.accounts.Contains(r.Client) {
		return ErrAccountNotFound
	}

	h := e.accounts.Entry(r.Client)
	defer h.Unlock()

	acc := h.Get()
	if acc.Locked {
		return ErrAccountLocked
	}

	referenced, ok := e.txlog.Read(r.Tx)
	if !ok {
		return ErrTransactionNotFound
	}
	if referenced.Client != r.Client {
		return ErrDifferentClient
	}
	if !referenced.Disputed {
		return ErrTransactionNotDisputed
	}
	if !referenced.HasAmount() {
		return ErrReferredTransactionNoAmount
	}

	s := disputeAmount(referenced)
	newTotal, err := amount.Sub(acc.Total, s)
	if err != nil {
		return err
	}
	newHeld, err := amount.Sub(acc.Held, s)
	if err != nil {
		return err
	}
	acc.Total = newTotal
	acc.Held = newHeld
	acc.Locked = true
	h.Set(acc)
	return nil
}
