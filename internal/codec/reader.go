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

// RecordError reports a single malformed input row. It never aborts the
// stream: the reader skips the row and continues with the next one.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

var wantHeader = []string{"type", "client", "tx", "amount"}

// Reader parses the transaction input format described in doc.go.
type Reader struct {
	csv  *csv.Reader
	line int
}

// NewReader wraps r. The caller is expected to consume the result with Rows.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr}
}

// Rows calls yield once per input row after the header, in order, with
// either a parsed Transaction or a non-nil *RecordError — never both. yield
// returning false stops reading early, leaving the underlying stream
// unconsumed from that point on.
//
// The header row must have exactly the columns type,client,tx,amount
// (compared case-insensitively after trimming). A header of the wrong shape
// or with the wrong column names is reported as a RecordError on line 1 and
// no further rows are read, since a header mismatch usually means "this
// isn't actually this format" rather than "skip one transaction".
func (r *Reader) Rows(yield func(ledger.Transaction, *RecordError) bool) {
	if !r.readHeader(yield) {
		return
	}
	for {
		fields, err := r.csv.Read()
		r.line++
		if err == io.EOF {
			return
		}
		if err != nil {
			if !yield(ledger.Transaction{}, &RecordError{Line: r.line, Err: err}) {
				return
			}
			continue
		}
		tx, err := parseRow(fields)
		if err != nil {
			if !yield(ledger.Transaction{}, &RecordError{Line: r.line, Err: err}) {
				return
			}
			continue
		}
		if !yield(tx, nil) {
			return
		}
	}
}

func (r *Reader) readHeader(yield func(ledger.Transaction, *RecordError) bool) bool {
	fields, err := r.csv.Read()
	r.line++
	if err == io.EOF {
		return false
	}
	if err != nil {
		yield(ledger.Transaction{}, &RecordError{Line: r.line, Err: err})
		return false
	}
	if len(fields) != len(wantHeader) {
		yield(ledger.Transaction{}, &RecordError{Line: r.line, Err: fmt.Errorf("expected %d columns, got %d", len(wantHeader), len(fields))})
		return false
	}
	for i, want := range wantHeader {
		if !strings.EqualFold(strings.TrimSpace(fields[i]), want) {
			yield(ledger.Transaction{}, &RecordError{Line: r.line, Err: fmt.Errorf("expected header column %q, got %q", want, fields[i])})
			return false
		}
	}
	return true
}

func parseRow(fields []string) (ledger.Transaction, error) {
	if len(fields) != len(wantHeader) {
		return ledger.Transaction{}, fmt.Errorf("expected %d columns, got %d", len(wantHeader), len(fields))
	}

	kind, err := ledger.ParseKind(fields[0])
	if err != nil {
		return ledger.Transaction{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid client id %q: %w", fields[1], err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid tx id %q: %w", fields[2], err)
	}

	var amt *amount.Amount
	if raw := strings.TrimSpace(fields[3]); raw != "" {
		a, err := amount.Parse(raw)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("invalid amount %q: %w", fields[3], err)
		}
		amt = &a
	}

	return ledger.Transaction{
		Kind:   kind,
		Client: ledger.ClientId(client),
		Tx:     ledger.TxId(tx),
		Amount: amt,
	}, nil
}
