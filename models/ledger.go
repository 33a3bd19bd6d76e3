package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/gallon_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("gallon-backend/models")

// AllowanceLedger derives remaining allowance from the transaction history.
// It is the only place remaining is computed.
type AllowanceLedger struct {
	db    *gorm.DB
	clock utils.Clock
	loc   *time.Location
}

type AllowanceUsage struct {
	Used         int             `json:"used"`
	Remaining    int             `json:"remaining"`
	Total        int             `json:"total"`
	UsagePercent decimal.Decimal `json:"usage_percent"`
}

// EmployeeLookup is what the kiosk shows after a scan.
type EmployeeLookup struct {
	Employee           *Employee            `json:"employee"`
	RemainingAllowance int                  `json:"remaining_allowance"`
	Transactions       []*GallonTransaction `json:"transactions"`
	CurrentMonth       string               `json:"current_month"`
}

// NewAllowanceLedger uses the system clock and local zone when clock or loc is nil.
func NewAllowanceLedger(db *gorm.DB, clock utils.Clock, loc *time.Location) *AllowanceLedger {
	if clock == nil {
		clock = utils.SystemClock
	}
	if loc == nil {
		loc = time.Local
	}
	return &AllowanceLedger{db: db, clock: clock, loc: loc}
}

func (l *AllowanceLedger) CurrentPeriod() string {
	return utils.PeriodKey(l.clock(), l.loc)
}

func (l *AllowanceLedger) Today() time.Time {
	return utils.LocalDate(l.clock(), l.loc)
}

func (l *AllowanceLedger) Location() *time.Location {
	return l.loc
}

// Remaining is max(0, monthly_allowance - used) for period. An empty period means the current one.
func (l *AllowanceLedger) Remaining(ctx context.Context, employee *Employee, period string) (int, error) {
	ctx, span := tracer.Start(ctx, "AllowanceLedger.Remaining", trace.WithAttributes(
		attribute.Int("employee.id", employee.ID),
		attribute.String("period", period),
	))
	defer span.End()

	return l.remaining(l.db.WithContext(ctx), employee, period)
}

func (l *AllowanceLedger) remaining(tx *gorm.DB, employee *Employee, period string) (int, error) {
	used, err := l.used(tx, employee.ID, period)
	if err != nil {
		return 0, err
	}
	return max(0, employee.MonthlyAllowance-used), nil
}

func (l *AllowanceLedger) used(tx *gorm.DB, employeeId int, period string) (int, error) {
	if period == "" {
		period = l.CurrentPeriod()
	}
	var used int64
	if err := tx.Model(&GallonTransaction{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("employee_id = ? AND period_key = ?", employeeId, period).
		Scan(&used).Error; err != nil {
		return 0, storageError(err)
	}
	return int(used), nil
}

// CurrentPeriodTransactions lists the current period's transactions, newest first.
func (l *AllowanceLedger) CurrentPeriodTransactions(ctx context.Context, employee *Employee) ([]*GallonTransaction, error) {
	results := []*GallonTransaction{}
	if err := l.db.WithContext(ctx).
		Where("employee_id = ? AND period_key = ?", employee.ID, l.CurrentPeriod()).
		Order("created_at DESC").Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, storageError(err)
	}
	return results, nil
}

// Usage summarizes the current period. Used is allowance minus remaining, so it never exceeds total.
func (l *AllowanceLedger) Usage(ctx context.Context, employee *Employee) (*AllowanceUsage, error) {
	remaining, err := l.Remaining(ctx, employee, "")
	if err != nil {
		return nil, err
	}
	used := employee.MonthlyAllowance - remaining
	return &AllowanceUsage{
		Used:         used,
		Remaining:    remaining,
		Total:        employee.MonthlyAllowance,
		UsagePercent: utils.Percentage(used, employee.MonthlyAllowance),
	}, nil
}

// Lookup resolves an active employee by external id with its remaining allowance and this month's history.
func (l *AllowanceLedger) Lookup(ctx context.Context, externalId string) (*EmployeeLookup, error) {
	employee, err := FindActiveEmployee(ctx, externalId)
	if err != nil {
		return nil, err
	}
	remaining, err := l.Remaining(ctx, employee, "")
	if err != nil {
		return nil, err
	}
	transactions, err := l.CurrentPeriodTransactions(ctx, employee)
	if err != nil {
		return nil, err
	}
	return &EmployeeLookup{
		Employee:           employee,
		RemainingAllowance: remaining,
		Transactions:       transactions,
		CurrentMonth:       utils.PeriodLabel(l.CurrentPeriod()),
	}, nil
}
