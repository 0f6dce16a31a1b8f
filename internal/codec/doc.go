// Package codec is the external collaborator that turns a byte stream into
// a lazy sequence of ledger.Transaction values, and turns account/
// transaction-log state back into rows.
//
// # Overview
//
// The wire format is CSV, read and written with the standard library's
// encoding/csv — there is no CSV library anywhere in the dependency corpus
// this module draws from, so the standard library is the idiomatic choice
// here rather than a gap to fill with a third-party package (see DESIGN.md).
// What is not standard-library boilerplate is the record-level tolerance:
// a malformed row becomes a *RecordError carrying its line number, not a
// fatal read error, so one bad line never aborts an otherwise-good stream.
//
// # Format
//
// Input rows: "type,client,tx,amount", whitespace-trimmed per field, "type"
// case-insensitive, "amount" empty for dispute/resolve/chargeback.
//
// Output rows (transaction log dump): "type,client,tx,amount,disputed",
// lowercase type, empty amount column for any non-monetary kind (which
// never actually appears in the log — only Deposit/Withdrawal are logged).
//
// Output rows (account dump): "client,available,held,total,locked".
package codec
