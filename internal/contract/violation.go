package contract

import "fmt"

// SchemaViolation reports the first contract rule a payload broke. Field is
// a JSON path into the payload (for example "questions[2].options"); Reason
// states what was expected there. A violation rejects the whole payload.
type SchemaViolation struct {
	Contract string
	Field    string
	Reason   string
}

func (e *SchemaViolation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s payload rejected: %s", e.Contract, e.Reason)
	}
	return fmt.Sprintf("%s payload rejected at %s: %s", e.Contract, e.Field, e.Reason)
}

func violation(contract, field, format string, args ...any) error {
	return &SchemaViolation{Contract: contract, Field: field, Reason: fmt.Sprintf(format, args...)}
}
