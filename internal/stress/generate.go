package stress

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
)

var kinds = [...]string{"deposit", "withdrawal", "dispute", "resolve", "chargeback"}

// Generate writes a header row followed by numTransactions synthetic input
// rows to w, in the input format described by internal/codec: random kind,
// random client in [1, 65_535] (every non-zero uint16 ClientId), random tx
// in [1, 10_000_000], and a random 4-decimal amount in [0, 100_000) for
// Deposit/Withdrawal rows (empty for the other three kinds).
func Generate(w io.Writer, numTransactions int) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"type", "client", "tx", "amount"}); err != nil {
		return err
	}

	for i := 0; i < numTransactions; i++ {
		kind := kinds[rand.IntN(len(kinds))]
		client := rand.IntN(65_535) + 1
		tx := rand.IntN(10_000_000) + 1

		amount := ""
		if kind == "deposit" || kind == "withdrawal" {
			amount = fmt.Sprintf("%.4f", rand.Float64()*100_000)
		}

		row := []string{kind, fmt.Sprintf("%d", client), fmt.Sprintf("%d", tx), amount}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
