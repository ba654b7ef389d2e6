package model

import (
	"fmt"
	"time"
)

// Strategy selects how a depreciable base is spread across periods.
type Strategy string

const (
	StrategyLinear      Strategy = "Linear"
	StrategyAccelerated Strategy = "Accelerated"
)

// ParseStrategy maps a stored or user-supplied string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case StrategyLinear, StrategyAccelerated:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown amortization strategy %q", ErrInvalidInput, s)
	}
}

func (s Strategy) String() string { return string(s) }

// ScheduleStatus is the lifecycle state of an amortization schedule.
type ScheduleStatus string

const (
	ScheduleActive    ScheduleStatus = "Active"
	ScheduleCompleted ScheduleStatus = "Completed"
	ScheduleCancelled ScheduleStatus = "Cancelled"
)

// ParseScheduleStatus maps a stored string to a ScheduleStatus.
func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	switch st := ScheduleStatus(s); st {
	case ScheduleActive, ScheduleCompleted, ScheduleCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown schedule status %q", ErrInvalidInput, s)
	}
}

func (s ScheduleStatus) String() string { return string(s) }

// AmortizationSchedule spreads the cost of a purchased asset over
// TotalPeriods monthly periods starting with the month of StartDate.
type AmortizationSchedule struct {
	ID                  string
	AssetAccountID      string
	Strategy            Strategy
	TotalPeriods        int
	Residual            int64
	StartDate           time.Time
	SourceTransactionID string
	Status              ScheduleStatus
	CreatedAt           time.Time
}

// AmortizationPosting records that Period of a schedule has been posted.
// (ScheduleID, Period) is unique.
type AmortizationPosting struct {
	ID            string
	ScheduleID    string
	Period        string // YYYY-MM
	Amount        int64
	TransactionID string
	GeneratedAt   time.Time
}
