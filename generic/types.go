/*
Package generic provides the domain-agnostic primitives of the leave engine.

PURPOSE:
  This package contains the small value types every other package builds on:
  dates and date ranges, decimal quantities, holiday calendars and the
  sentinel errors shared across packages. Nothing in here knows what a leave
  type, a team or a decision is.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 5 days, 12.5 hours)
  - EmployeeID / TeamID: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: Values are copied, never mutated through shared pointers
  2. Precision: Uses decimal.Decimal to avoid floating-point drift in balances
  3. Type Safety: Strong typing for IDs prevents mixing employee/team IDs

USAGE:
  balance := generic.NewAmountFromInt(10, generic.UnitDays)
  if balance.LessThan(generic.NewAmountFromInt(requested, generic.UnitDays)) {
      // shortfall
  }

SEE ALSO:
  - time.go: TimePoint and holiday calendars
  - period.go: Inclusive date ranges
  - errors.go: Shared sentinel errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (always time-based for this system)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays Unit = "days"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// ParseAmount parses a decimal string such as "12.5" into an Amount.
func ParseAmount(value string, unit Unit) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d, Unit: unit}, nil
}

func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) LessThan(b Amount) bool    { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }

// Float returns the value as a float64 for presentation. Never use it for comparisons.
func (a Amount) Float() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string { return a.Value.String() + " " + string(a.Unit) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type TeamID string
