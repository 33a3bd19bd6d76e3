package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const distributionLockType = "GallonDistribution"

// TransactionRecorder appends distributions after checking them against the ledger.
// The check and the insert for one employee never interleave with another distribution
// for the same employee: an in-process keyed mutex, an optional Redis lock and a
// row lock on the employee all cover the same section.
type TransactionRecorder struct {
	Ledger  *AllowanceLedger
	Logger  *logrus.Logger
	LockTTL time.Duration

	locks *utils.KeyedMutex
}

func NewTransactionRecorder(ledger *AllowanceLedger, logger *logrus.Logger) *TransactionRecorder {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &TransactionRecorder{
		Ledger:  ledger,
		Logger:  logger,
		LockTTL: 10 * time.Second,
		locks:   utils.NewKeyedMutex(),
	}
}

// Distribute records quantity gallons for the active employee with externalId.
// Checks run in order and the first failure wins: ErrEmployeeNotFound, ErrInvalidQuantity,
// then *InsufficientAllowanceError. On failure nothing is written.
func (r *TransactionRecorder) Distribute(ctx context.Context, externalId string, quantity int) (*GallonTransaction, error) {
	externalId = strings.TrimSpace(externalId)
	ctx, span := tracer.Start(ctx, "TransactionRecorder.Distribute", trace.WithAttributes(
		attribute.String("employee.external_id", externalId),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	created, err := r.distribute(ctx, externalId, quantity)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, ErrStorageUnavailable) {
			span.RecordError(err)
			config.LogError(r.Logger, "recorder.go", "Distribute", "distribute", logrus.Fields{
				"employee_id": externalId,
				"quantity":    quantity,
			}, err)
		}
		return nil, err
	}

	r.Logger.WithFields(logrus.Fields{
		"module":         "recorder.go",
		"employee_id":    externalId,
		"quantity":       quantity,
		"remaining":      created.RemainingAllowance,
		"period_key":     created.PeriodKey,
		"transaction_id": created.ID,
	}).Info("gallons distributed")
	return created, nil
}

func (r *TransactionRecorder) distribute(ctx context.Context, externalId string, quantity int) (*GallonTransaction, error) {
	if externalId == "" {
		return nil, ErrEmployeeNotFound
	}

	unlock := r.locks.Lock(externalId)
	defer unlock()

	release, err := utils.ObtainLock(ctx, distributionLockType, externalId, r.LockTTL, "recorder.go", "distribute")
	if err != nil {
		return nil, storageError(err)
	}
	defer release()

	now := r.Ledger.clock()
	period := utils.PeriodKey(now, r.Ledger.loc)
	today := utils.LocalDate(now, r.Ledger.loc)

	var created *GallonTransaction
	err = r.Ledger.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employee Employee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("employee_id = ? AND is_active = ?", externalId, true).
			Take(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}

		if quantity < MinQuantity || quantity > MaxQuantity {
			return ErrInvalidQuantity
		}

		remaining, err := r.Ledger.remaining(tx, &employee, period)
		if err != nil {
			return err
		}
		if quantity > remaining {
			return &InsufficientAllowanceError{Requested: quantity, Remaining: remaining}
		}

		record := GallonTransaction{
			EmployeeId:         employee.ID,
			Quantity:           quantity,
			RemainingAllowance: remaining - quantity,
			TransactionDate:    today,
			PeriodKey:          period,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		created = &record
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	return created, nil
}
