package parsers

import "errors"

// Structurally fatal import conditions. Row-level data-quality issues are
// never errors; they are counted and surfaced as warnings on the result.
var (
	ErrEmptyCSV               = errors.New("empty CSV file")
	ErrMissingRequiredColumns = errors.New("could not identify a date or description column")
	ErrNoAmountColumns        = errors.New("could not identify an amount column or a debit/credit column pair")
	ErrNoMonthColumns         = errors.New("could not identify any month columns")
	ErrNoUsableData           = errors.New("no valid transactions and no opening balance found")
)
