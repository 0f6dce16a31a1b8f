package codec

import "errors"

// Sentinel errors for the snapshot-reload sub-kinds of kind-6 errors
// (I/O, codec, InvalidClientId, InvalidDecimal, InvalidBool). Each is
// wrapped with %w together with the line number and offending field (never
// replaced by another error), so callers can distinguish these
// field-validation failures from one another, or from a column-count/I/O
// error, with errors.Is — mirroring internal/ledger/errors.go's sentinel
// style.
var (
	// ErrInvalidClientID is returned when a row's client column is not a
	// valid unsigned 16-bit decimal integer.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidTxID is returned when a row's tx column is not a valid
	// unsigned 32-bit decimal integer.
	ErrInvalidTxID = errors.New("invalid tx id")

	// ErrInvalidDecimal is returned when a row's available/held/total/amount
	// column is not a valid decimal string.
	ErrInvalidDecimal = errors.New("invalid decimal amount")

	// ErrInvalidBool is returned when a row's locked/disputed column is not
	// "true" or "false".
	ErrInvalidBool = errors.New("invalid bool")
)
