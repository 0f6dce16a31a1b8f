package codec

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ledgerforge/txnengine/internal/ledger"
)

// WriteAccounts writes the account dump, header "client,available,held,
// total,locked", consuming rows in whatever order iterate calls back with
// them (kvstore.Map.SnapshotIter gives no cross-shard ordering guarantee,
// and the dump format does not require one).
func WriteAccounts(w io.Writer, iterate func(yield func(ledger.ClientId, ledger.Account) bool)) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}

	var writeErr error
	iterate(func(client ledger.ClientId, acc ledger.Account) bool {
		row := []string{
			strconv.FormatUint(uint64(client), 10),
			acc.Available.String(),
			acc.Held.String(),
			acc.Total.String(),
			strconv.FormatBool(acc.Locked),
		}
		if err := cw.Write(row); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}
	cw.Flush()
	return cw.Error()
}

// WriteTransactionLog writes the transaction log dump, header "type,client,
// tx,amount,disputed". Only Deposit and Withdrawal transactions are ever
// logged, so amount is always present here, never the empty column the
// schema otherwise admits for non-monetary kinds.
func WriteTransactionLog(w io.Writer, iterate func(yield func(ledger.TxId, ledger.Transaction) bool)) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"type", "client", "tx", "amount", "disputed"}); err != nil {
		return err
	}

	var writeErr error
	iterate(func(_ ledger.TxId, t ledger.Transaction) bool {
		amountField := ""
		if t.HasAmount() {
			amountField = t.Amount.String()
		}
		row := []string{
			t.Kind.String(),
			strconv.FormatUint(uint64(t.Client), 10),
			strconv.FormatUint(uint64(t.Tx), 10),
			amountField,
			strconv.FormatBool(t.Disputed),
		}
		if err := cw.Write(row); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}
	cw.Flush()
	return cw.Error()
}
