package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledgerforge/txnengine/internal/amount"
	"github.com/ledgerforge/txnengine/internal/ledger"
)

// ReadAccounts parses the account dump format (header "client,available,
// held,total,locked"), calling yield once per row in file order. A
// malformed row is a fatal error for the whole reload — unlike Reader.Rows,
// there is no per-record recovery here: reload is a kind-6 "snapshot
// reload" error, not a per-record parse/validation error.
func ReadAccounts(r io.Reader, yield func(ledger.ClientId, ledger.Account) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		return fmt.Errorf("account dump header: %w", err)
	}

	line := 1
	for {
		fields, err := cr.Read()
		line++
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(fields) != 5 {
			return fmt.Errorf("line %d: expected 5 columns, got %d", line, len(fields))
		}

		clientID, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 16)
		if err != nil {
			return fmt.Errorf("line %d: %w: %q: %w", line, ErrInvalidClientID, fields[0], err)
		}
		available, err := amount.Parse(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w: available %q: %w", line, ErrInvalidDecimal, fields[1], err)
		}
		held, err := amount.Parse(fields[2])
		if err != nil {
			return fmt.Errorf("line %d: %w: held %q: %w", line, ErrInvalidDecimal, fields[2], err)
		}
		total, err := amount.Parse(fields[3])
		if err != nil {
			return fmt.Errorf("line %d: %w: total %q: %w", line, ErrInvalidDecimal, fields[3], err)
		}
		locked, err := strconv.ParseBool(strings.TrimSpace(fields[4]))
		if err != nil {
			return fmt.Errorf("line %d: %w: %q: %w", line, ErrInvalidBool, fields[4], err)
		}

		if err := yield(ledger.ClientId(clientID), ledger.Account{
			Available: available,
			Held:      held,
			Total:     total,
			Locked:    locked,
		}); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

// ReadTransactionLog parses the transaction log dump format (header "type,
// client,tx,amount,disputed"), calling yield once per row in file order.
// As with ReadAccounts, any malformed row aborts the whole reload.
func ReadTransactionLog(r io.Reader, yield func(ledger.Transaction) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		return fmt.Errorf("transaction log header: %w", err)
	}

	line := 1
	for {
		fields, err := cr.Read()
		line++
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(fields) != 5 {
			return fmt.Errorf("line %d: expected 5 columns, got %d", line, len(fields))
		}

		kind, err := ledger.ParseKind(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		clientID, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
		if err != nil {
			return fmt.Errorf("line %d: %w: %q: %w", line, ErrInvalidClientID, fields[1], err)
		}
		txID, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
		if err != nil {
			return fmt.Errorf("line %d: %w: %q: %w", line, ErrInvalidTxID, fields[2], err)
		}

		var amt *amount.Amount
		if raw := strings.TrimSpace(fields[3]); raw != "" {
			a, err := amount.Parse(raw)
			if err != nil {
				return fmt.Errorf("line %d: %w: %q: %w", line, ErrInvalidDecimal, fields[3], err)
			}
			amt = &a
		}
		disputed, err := strconv.ParseBool(strings.TrimSpace(fields[4]))
		if err != nil {
			return fmt.Errorf("line %d: %w: %q: %w", line, ErrInvalidBool, fields[4], err)
		}

		if err := yield(ledger.Transaction{
			Kind:     kind,
			Client:   ledger.ClientId(clientID),
			Tx:       ledger.TxId(txID),
			Amount:   amt,
			Disputed: disputed,
		}); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
