package snapshot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ledgerforge/txnengine/internal/amount"
	"github.com/ledgerforge/txnengine/internal/ledger"
)

func mustAmount(t *testing.T, s string) *amount.Amount {
	t.Helper()
	a, err := amount.Parse(s)
	if err != nil {
		t.Fatalf("amount.Parse(%q): %v", s, err)
	}
	return &a
}

func TestDumpReloadRoundTrip(t *testing.T) {
	e := ledger.New()
	ops := []ledger.Transaction{
		{Kind: ledger.KindDeposit, Client: 1, Tx: 1, Amount: mustAmount(t, "10.0000")},
		{Kind: ledger.KindWithdrawal, Client: 1, Tx: 2, Amount: mustAmount(t, "4.0000")},
		{Kind: ledger.KindDeposit, Client: 2, Tx: 3, Amount: mustAmount(t, "20.0000")},
	}
	for _, op := range ops {
		if err := e.ProcessTransaction(op); err != nil {
			t.Fatalf("ProcessTransaction(%+v): %v", op, err)
		}
	}

	var accountsBuf, txlogBuf bytes.Buffer
	if err := Dump(e, &accountsBuf, &txlogBuf); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	reloaded, err := Reload(bytes.NewReader(accountsBuf.Bytes()), bytes.NewReader(txlogBuf.Bytes()))
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}

	wantAccounts, wantTx := e.ApproxSize()
	gotAccounts, gotTx := reloaded.ApproxSize()
	if gotAccounts != wantAccounts || gotTx != wantTx {
		t.Fatalf("sizes = (%d, %d), want (%d, %d)", gotAccounts, gotTx, wantAccounts, wantTx)
	}

	// A deposit reusing tx 1 must still be rejected after reload: the
	// transaction log entry survived the round trip.
	err = reloaded.ProcessTransaction(ledger.Transaction{Kind: ledger.KindDeposit, Client: 1, Tx: 1, Amount: mustAmount(t, "1")})
	if !errors.Is(err, ledger.ErrTransactionRepeated) {
		t.Fatalf("expected ErrTransactionRepeated after reload, got %v", err)
	}
}

func TestReloadIsUnsafeAgainstCorruptInput(t *testing.T) {
	// Reload never validates the logged deposit's amount against Bound, so a
	// corrupt snapshot can seed a transaction log entry whose magnitude
	// exceeds the representable range entirely. The first Dispute against it
	// then overflows — that is the intended defensive behaviour, not
	// something Reload is expected to catch up front.
	const hugeNegative = "-20000000000000000000000000000" // -2e28, beyond Bound

	accounts := "client,available,held,total,locked\n" +
		"1,0.0000,0.0000,0.0000,false\n"
	txlog := "type,client,tx,amount,disputed\n" +
		"deposit,1,1," + hugeNegative + ",false\n"

	e, err := Reload(bytes.NewReader([]byte(accounts)), bytes.NewReader([]byte(txlog)))
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}

	err = e.ProcessTransaction(ledger.Transaction{Kind: ledger.KindDispute, Client: 1, Tx: 1})
	if !errors.Is(err, amount.ErrSubtractionOverflow) {
		t.Fatalf("dispute after corrupt reload = %v, want ErrSubtractionOverflow", err)
	}
}
