package budget

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrHasLinkedExpenses = errors.New("budget item has linked expenses")
	ErrNegativeAmount    = errors.New("amount must not be negative")
)

// ExceededError reports a mutation that would push an event's planned
// allocations or recorded expenses past its approved ceiling. It carries the
// figures the caller needs to explain the rejection.
type ExceededError struct {
	Ceiling   decimal.Decimal `json:"ceiling"`
	Current   decimal.Decimal `json:"current"`
	Attempted decimal.Decimal `json:"attempted"`
	Remaining decimal.Decimal `json:"remaining"`
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: ceiling %s, current %s, attempted %s, remaining %s",
		e.Ceiling, e.Current, e.Attempted, e.Remaining)
}
