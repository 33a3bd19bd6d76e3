package models_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/models"
	"github.com/mmdatafocus/gallon_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// March 2024, mid-month, UTC.
var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// setupTestDB opens a private in-memory SQLite database and installs it as the global connection.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Use(config.NewHistoryGuardPlugin()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: transactions must never wait on a second one
	sqlDB.SetMaxOpenConns(1)

	prev := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(prev)
		_ = sqlDB.Close()
	})

	require.NoError(t, models.Migrate())
	return db
}

func newLedger(db *gorm.DB, at time.Time) *models.AllowanceLedger {
	return models.NewAllowanceLedger(db, utils.FixedClock(at), time.UTC)
}

func newRecorder(ledger *models.AllowanceLedger) *models.TransactionRecorder {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return models.NewTransactionRecorder(ledger, logger)
}

func intPtr(v int) *int { return &v }

func createEmployee(t *testing.T, externalId string, grade models.EmployeeGrade) *models.Employee {
	t.Helper()
	e, err := models.CreateEmployee(context.Background(), &models.NewEmployee{
		EmployeeId: externalId,
		Name:       "Employee " + externalId,
		Department: "Production",
		Grade:      grade,
		Location:   "Bekasi Production Plant",
	})
	require.NoError(t, err)
	return e
}

// insertHistory writes a row directly, bypassing the recorder, to seed other periods.
func insertHistory(t *testing.T, db *gorm.DB, employee *models.Employee, quantity int, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.GallonTransaction{
		EmployeeId:         employee.ID,
		Quantity:           quantity,
		RemainingAllowance: 0,
		TransactionDate:    utils.LocalDate(at, time.UTC),
		PeriodKey:          utils.PeriodKey(at, time.UTC),
	}).Error)
}
