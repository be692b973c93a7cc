package bank

import "fmt"

// UnsupportedBankError indicates an institution identifier with no
// registered adapter. The file is skipped, counted and reported; the run
// continues.
type UnsupportedBankError struct {
	Institution string
}

func (e *UnsupportedBankError) Error() string {
	return fmt.Sprintf("unsupported institution %q", e.Institution)
}

// RowParseError indicates a malformed date or amount in one raw row. The
// original row text is retained for audit; the file continues with the
// remaining rows.
type RowParseError struct {
	Institution string
	Line        int
	Field       string
	Raw         string
	Err         error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("%s row %d: parsing %s: %v", e.Institution, e.Line, e.Field, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }
