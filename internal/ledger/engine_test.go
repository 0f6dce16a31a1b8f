package ledger

import (
	"errors"
	"testing"

	"github.com/ledgerforge/txnengine/internal/amount"
	"github.com/shopspring/decimal"
)

func amt(t *testing.T, s string) *amount.Amount {
	t.Helper()
	a, err := amount.Parse(s)
	if err != nil {
		t.Fatalf("amount.Parse(%q): %v", s, err)
	}
	return &a
}

func deposit(client ClientId, tx TxId, a *amount.Amount) Transaction {
	return Transaction{Kind: KindDeposit, Client: client, Tx: tx, Amount: a}
}

func withdrawal(client ClientId, tx TxId, a *amount.Amount) Transaction {
	return Transaction{Kind: KindWithdrawal, Client: client, Tx: tx, Amount: a}
}

func dispute(client ClientId, tx TxId) Transaction {
	return Transaction{Kind: KindDispute, Client: client, Tx: tx}
}

func resolve(client ClientId, tx TxId) Transaction {
	return Transaction{Kind: KindResolve, Client: client, Tx: tx}
}

func chargeback(client ClientId, tx TxId) Transaction {
	return Transaction{Kind: KindChargeback, Client: client, Tx: tx}
}

func wantAccount(t *testing.T, e *Engine, client ClientId, available, held, total string, locked bool) {
	t.Helper()
	acc, ok := e.accounts.Read(client)
	if !ok {
		t.Fatalf("client %d: no account", client)
	}
	if acc.Available.String() != available {
		t.Errorf("client %d available = %s, want %s", client, acc.Available.String(), available)
	}
	if acc.Held.String() != held {
		t.Errorf("client %d held = %s, want %s", client, acc.Held.String(), held)
	}
	if acc.Total.String() != total {
		t.Errorf("client %d total = %s, want %s", client, acc.Total.String(), total)
	}
	if acc.Locked != locked {
		t.Errorf("client %d locked = %v, want %v", client, acc.Locked, locked)
	}
}

// S1 — basic deposit/withdrawal.
func TestScenarioBasicDepositWithdrawal(t *testing.T) {
	e := New()
	if err := e.ProcessTransaction(deposit(1, 1, amt(t, "10.0000"))); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := e.ProcessTransaction(withdrawal(1, 2, amt(t, "5.0000"))); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	wantAccount(t, e, 1, "5.0000", "0.0000", "5.0000", false)
}

// S2 — dispute then chargeback.
func TestScenarioDisputeThenChargeback(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "10.0000"))))
	mustOK(t, e.ProcessTransaction(dispute(1, 1)))
	mustOK(t, e.ProcessTransaction(chargeback(1, 1)))
	wantAccount(t, e, 1, "0.0000", "0.0000", "0.0000", true)
}

// S3 — disputed withdrawal drives held negative.
func TestScenarioDisputedWithdrawalHeldNegative(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "10.0000"))))
	mustOK(t, e.ProcessTransaction(withdrawal(1, 2, amt(t, "5.0000"))))
	mustOK(t, e.ProcessTransaction(dispute(1, 2)))
	wantAccount(t, e, 1, "10.0000", "-5.0000", "5.0000", false)
}

// S4 — insufficient funds is skipped, later dispute finds nothing to reference.
func TestScenarioInsufficientFundsThenDisputeNotFound(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(9, 20, amt(t, "100"))))

	err := e.ProcessTransaction(withdrawal(9, 21, amt(t, "200")))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("withdrawal error = %v, want ErrInsufficientFunds", err)
	}

	err = e.ProcessTransaction(dispute(9, 21))
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("dispute error = %v, want ErrTransactionNotFound", err)
	}

	wantAccount(t, e, 9, "100.0000", "0.0000", "100.0000", false)
}

// S5 — a locked account rejects further activity.
func TestScenarioLockedAccountRejectsFurtherActivity(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(7, 15, amt(t, "10"))))
	mustOK(t, e.ProcessTransaction(dispute(7, 15)))
	mustOK(t, e.ProcessTransaction(chargeback(7, 15)))

	err := e.ProcessTransaction(deposit(7, 17, amt(t, "10")))
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("deposit on locked account = %v, want ErrAccountLocked", err)
	}

	wantAccount(t, e, 7, "0.0000", "0.0000", "0.0000", true)
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Dispute/Resolve idempotence on account totals.
func TestLawDisputeResolveIdempotence(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "10.0000"))))
	wantAccount(t, e, 1, "10.0000", "0.0000", "10.0000", false)

	mustOK(t, e.ProcessTransaction(dispute(1, 1)))
	mustOK(t, e.ProcessTransaction(resolve(1, 1)))

	wantAccount(t, e, 1, "10.0000", "0.0000", "10.0000", false)
}

// Withdrawal of a disputed-and-resolved deposit.
func TestLawWithdrawalAfterDisputeResolve(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "10.0000"))))
	mustOK(t, e.ProcessTransaction(dispute(1, 1)))
	mustOK(t, e.ProcessTransaction(resolve(1, 1)))
	mustOK(t, e.ProcessTransaction(withdrawal(1, 2, amt(t, "10.0000"))))

	wantAccount(t, e, 1, "0.0000", "0.0000", "0.0000", false)
}

// TxId reuse is rejected even after Dispute; Resolve.
func TestLawTxIdReuseRejectedAfterDisputeResolve(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "10.0000"))))
	mustOK(t, e.ProcessTransaction(dispute(1, 1)))
	mustOK(t, e.ProcessTransaction(resolve(1, 1)))

	err := e.ProcessTransaction(deposit(1, 1, amt(t, "5.0000")))
	if !errors.Is(err, ErrTransactionRepeated) {
		t.Fatalf("repeat deposit error = %v, want ErrTransactionRepeated", err)
	}
	wantAccount(t, e, 1, "10.0000", "0.0000", "10.0000", false)
}

// Rounding law: 1.12345 stores as 1.1235; 0.00004 rounds to zero and a
// withdrawal of that amount fails WithdrawalAmountInvalid.
func TestLawRoundingAtParseTime(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "1.12345"))))
	wantAccount(t, e, 1, "1.1235", "0.0000", "1.1235", false)

	tiny := amt(t, "0.00004")
	if tiny.String() != "0.0000" {
		t.Fatalf("0.00004 should round to 0.0000, got %s", tiny.String())
	}
	err := e.ProcessTransaction(withdrawal(1, 2, tiny))
	if !errors.Is(err, ErrWithdrawalAmountInvalid) {
		t.Fatalf("withdrawal of rounded-to-zero amount = %v, want ErrWithdrawalAmountInvalid", err)
	}
}

// Boundary: deposit of (MAX/2) + (MAX/2) + epsilon triggers AdditionOverflow
// on the third record; the first two succeed.
func TestBoundaryAdditionOverflowOnThirdDeposit(t *testing.T) {
	e := New()
	half := amount.FromDecimal(amount.Bound.Div(decimal.New(2, 0)))

	mustOK(t, e.ProcessTransaction(deposit(1, 1, &half)))
	mustOK(t, e.ProcessTransaction(deposit(1, 2, &half)))

	wantTotal, err := amount.Add(half, half)
	if err != nil {
		t.Fatalf("sum of the two halves should not itself overflow: %v", err)
	}

	epsilon := amt(t, "0.0001")
	err = e.ProcessTransaction(deposit(1, 3, epsilon))
	if !errors.Is(err, amount.ErrAdditionOverflow) {
		t.Fatalf("third deposit error = %v, want ErrAdditionOverflow", err)
	}

	acc, _ := e.accounts.Read(1)
	if !acc.Total.Equal(wantTotal) {
		t.Errorf("total after overflow = %s, want %s", acc.Total.String(), wantTotal.String())
	}
}

// Dispute of a withdrawal whose amount is w sets available to available+w
// and held to held-w (held goes negative, total unchanged).
func TestBoundaryDisputeOfWithdrawalNegatesAmount(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "20.0000"))))
	mustOK(t, e.ProcessTransaction(withdrawal(1, 2, amt(t, "8.0000"))))
	mustOK(t, e.ProcessTransaction(dispute(1, 2)))

	wantAccount(t, e, 1, "20.0000", "-8.0000", "12.0000", false)
}

func TestProcessDepositErrors(t *testing.T) {
	e := New()

	if err := e.ProcessTransaction(Transaction{Kind: KindDeposit, Client: 1, Tx: 1}); !errors.Is(err, ErrNoAmount) {
		t.Errorf("missing amount = %v, want ErrNoAmount", err)
	}

	zero := amount.Zero()
	if err := e.ProcessTransaction(deposit(1, 1, &zero)); !errors.Is(err, ErrDepositAmountInvalid) {
		t.Errorf("zero amount = %v, want ErrDepositAmountInvalid", err)
	}

	neg := amount.Negate(*amt(t, "5"))
	if err := e.ProcessTransaction(deposit(1, 1, &neg)); !errors.Is(err, ErrDepositAmountInvalid) {
		t.Errorf("negative amount = %v, want ErrDepositAmountInvalid", err)
	}

	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "10"))))
	if err := e.ProcessTransaction(deposit(1, 1, amt(t, "10"))); !errors.Is(err, ErrTransactionRepeated) {
		t.Errorf("repeated tx = %v, want ErrTransactionRepeated", err)
	}
}

func TestProcessWithdrawalRequiresExistingAccount(t *testing.T) {
	e := New()
	err := e.ProcessTransaction(withdrawal(1, 1, amt(t, "1")))
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("withdrawal on unknown account = %v, want ErrAccountNotFound", err)
	}
	if e.accounts.Contains(1) {
		t.Fatal("withdrawal must not create an account")
	}
}

func TestProcessDisputeErrors(t *testing.T) {
	e := New()

	if err := e.ProcessTransaction(dispute(1, 1)); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("dispute on unknown client = %v, want ErrAccountNotFound", err)
	}

	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "10"))))

	if err := e.ProcessTransaction(dispute(1, 99)); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("dispute of unknown tx = %v, want ErrTransactionNotFound", err)
	}

	mustOK(t, e.ProcessTransaction(deposit(2, 2, amt(t, "10"))))
	if err := e.ProcessTransaction(dispute(2, 1)); !errors.Is(err, ErrDifferentClient) {
		t.Errorf("dispute across clients = %v, want ErrDifferentClient", err)
	}

	mustOK(t, e.ProcessTransaction(dispute(1, 1)))
	if err := e.ProcessTransaction(dispute(1, 1)); !errors.Is(err, ErrTransactionAlreadyDisputed) {
		t.Errorf("re-dispute = %v, want ErrTransactionAlreadyDisputed", err)
	}
}

func TestProcessResolveAndChargebackRequireDisputed(t *testing.T) {
	e := New()
	mustOK(t, e.ProcessTransaction(deposit(1, 1, amt(t, "10"))))

	if err := e.ProcessTransaction(resolve(1, 1)); !errors.Is(err, ErrTransactionNotDisputed) {
		t.Errorf("resolve of non-disputed tx = %v, want ErrTransactionNotDisputed", err)
	}
	if err := e.ProcessTransaction(chargeback(1, 1)); !errors.Is(err, ErrTransactionNotDisputed) {
		t.Errorf("chargeback of non-disputed tx = %v, want ErrTransactionNotDisputed", err)
	}
}

func TestMultiErrorAggregatesInOrder(t *testing.T) {
	err1 := ErrNoAmount
	err2 := ErrAccountLocked
	m := NewMultiError([]error{nil, err1, nil, err2})
	if m == nil {
		t.Fatal("expected non-nil MultiError")
	}
	if len(m.Errs) != 2 || m.Errs[0] != err1 || m.Errs[1] != err2 {
		t.Fatalf("MultiError.Errs = %v, want [%v %v]", m.Errs, err1, err2)
	}
	if !errors.Is(m, err1) || !errors.Is(m, err2) {
		t.Fatal("errors.Is should reach every aggregated error")
	}

	if NewMultiError(nil) != nil {
		t.Fatal("NewMultiError(nil) should return nil")
	}
	if NewMultiError([]error{nil, nil}) != nil {
		t.Fatal("NewMultiError of all-nil errors should return nil")
	}
}
