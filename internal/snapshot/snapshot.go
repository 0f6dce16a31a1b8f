package snapshot

import (
	"io"

	"github.com/ledgerforge/txnengine/internal/codec"
	"github.com/ledgerforge/txnengine/internal/ledger"
)

// Dump writes e's account table to accountsW and its transaction log to
// txlogW, in the external row formats.
func Dump(e *ledger.Engine, accountsW, txlogW io.Writer) error {
	if err := codec.WriteAccounts(accountsW, e.Accounts); err != nil {
		return err
	}
	return codec.WriteTransactionLog(txlogW, e.Transactions)
}

// Reload populates a freshly constructed engine from two previously dumped
// row streams, without re-validating any invariant. Callers must not reuse
// an engine that already has state: Reload assumes an empty store, matching
// the "inserts records into an empty store" contract.
func Reload(accountsR, txlogR io.Reader) (*ledger.Engine, error) {
	e := ledger.New()

	err := codec.ReadAccounts(accountsR, func(id ledger.ClientId, acc ledger.Account) error {
		e.LoadAccount(id, acc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = codec.ReadTransactionLog(txlogR, func(t ledger.Transaction) error {
		e.LoadTransaction(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e, nil
}
