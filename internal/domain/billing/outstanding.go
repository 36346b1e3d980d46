package billing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// Operator combines the carried-in outstanding balance with this month's movement.
type Operator string

const (
	OperatorAdd      Operator = "+"
	OperatorSubtract Operator = "-"
)

// ParseOperator accepts "+", "-", "add" or "subtract". Blank defaults to "+".
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "+", "add", "plus":
		return OperatorAdd, nil
	case "-", "−", "sub", "subtract", "minus":
		return OperatorSubtract, nil
	}
	return "", errors.Newf(errors.ErrCodeInvalidOperator, "unknown outstanding operator %q", s)
}

// Valid reports whether o is "+" or "-".
func (o Operator) Valid() bool {
	return o == OperatorAdd || o == OperatorSubtract
}

// Combine applies op to previous and current. The result may be negative.
func Combine(previous, current decimal.Decimal, op Operator) decimal.Decimal {
	if op == OperatorSubtract {
		return previous.Sub(current)
	}
	return previous.Add(current)
}

// Outstanding is the balance block stored on every entry.
type Outstanding struct {
	Previous decimal.Decimal `json:"previous_outstanding"`
	Current  decimal.Decimal `json:"current_outstanding"`
	Operator Operator        `json:"outstanding_operator"`
	Total    decimal.Decimal `json:"total_outstanding"`
}

// NewOutstanding derives Total from the other three fields.
func NewOutstanding(previous, current decimal.Decimal, op Operator) Outstanding {
	if op == "" {
		op = OperatorAdd
	}
	return Outstanding{
		Previous: previous,
		Current:  current,
		Operator: op,
		Total:    Combine(previous, current, op),
	}
}

//Personal.AI order the ending
