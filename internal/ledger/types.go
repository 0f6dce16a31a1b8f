package ledger

import (
	"fmt"
	"strings"

	"github.com/ledgerforge/txnengine/internal/amount"
)

// ClientId opaquely identifies an account holder. No ordering semantics are
// implied by its numeric representation.
type ClientId uint16

// TxId opaquely identifies a logged Deposit or Withdrawal. No ordering
// semantics are implied by its numeric representation.
type TxId uint32

// Kind enumerates the five transaction record types the engine understands.
type Kind int

const (
	// KindUnknown is the zero value and is never a valid parsed Kind.
	KindUnknown Kind = iota
	KindDeposit
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

// String renders k in its canonical lowercase form, matching the output
// external format.
func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ParseKind parses s case-insensitively into a Kind. Surrounding whitespace
// is trimmed. An unrecognised kind returns KindUnknown and a non-nil error.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return KindDeposit, nil
	case "withdrawal":
		return KindWithdrawal, nil
	case "dispute":
		return KindDispute, nil
	case "resolve":
		return KindResolve, nil
	case "chargeback":
		return KindChargeback, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Transaction is a single parsed input record, or a logged Deposit/
// Withdrawal carrying its current dispute status.
//
// Only Deposit and Withdrawal transactions carry an amount; Dispute,
// Resolve and Chargeback reference a prior Tx by id and carry none.
// Disputed is meaningful only for logged Deposit/Withdrawal transactions:
// Dispute sets it true, Resolve clears it, Chargeback leaves it true.
type Transaction struct {
	Amount   *amount.Amount
	Kind     Kind
	Client   ClientId
	Tx       TxId
	Disputed bool
}

// HasAmount reports whether the transaction carries an amount.
func (t Transaction) HasAmount() bool {
	return t.Amount != nil
}

// Account is one client's balance state.
//
// Invariant: Available+Held == Total holds for every account produced by
// this engine from an initially empty store; it can only be violated by
// loading a corrupt, untrusted snapshot (see internal/snapshot).
type Account struct {
	Available amount.Amount
	Held      amount.Amount
	Total     amount.Amount
	Locked    bool
}
