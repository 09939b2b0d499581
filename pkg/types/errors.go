package types

import "fmt"

// LegParseError reports one leg line that matched a direction marker but
// failed downstream parsing. The leg is dropped and the rest of the message
// keeps processing; it never aborts evaluation.
type LegParseError struct {
	Line   int    // zero-based index into the normalized body lines
	Token  string // token kind that failed (size, contract, price, total)
	Reason string
}

func (e *LegParseError) Error() string {
	return fmt.Sprintf("leg line %d: bad %s token: %s", e.Line, e.Token, e.Reason)
}
