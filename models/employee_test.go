package models_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmployeeDerivesAllowanceFromGrade(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	for _, grade := range models.Grades() {
		want, ok := grade.Allowance()
		require.True(t, ok)
		e, err := models.CreateEmployee(ctx, &models.NewEmployee{
			EmployeeId: "G-" + string(grade),
			Name:       "Someone",
			Department: "HR",
			Grade:      grade,
			Location:   "Jakarta",
		})
		require.NoError(t, err)
		assert.Equal(t, want, e.MonthlyAllowance, grade)
		assert.True(t, e.Active())
	}
}

func TestCreateEmployeeExplicitAllowance(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	e, err := models.CreateEmployee(ctx, &models.NewEmployee{
		EmployeeId:       "X1",
		Name:             "Contractor",
		Department:       "Warehouse",
		Grade:            "Contractor",
		Location:         "Cikarang",
		MonthlyAllowance: intPtr(3),
		IsActive:         new(bool),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, e.MonthlyAllowance)
	assert.False(t, e.Active())

	// unknown grade and no allowance
	_, err = models.CreateEmployee(ctx, &models.NewEmployee{
		EmployeeId: "X2",
		Name:       "Contractor",
		Department: "Warehouse",
		Grade:      "Contractor",
		Location:   "Cikarang",
	})
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "required", ve.Fields["monthly_allowance"])
}

func TestCreateEmployeeValidation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	_, err := models.CreateEmployee(ctx, &models.NewEmployee{
		EmployeeId:       "  ",
		Department:       "HR",
		Grade:            models.EmployeeGradeStaff,
		Location:         "Jakarta",
		MonthlyAllowance: intPtr(101),
	})
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "required", ve.Fields["employee_id"])
	assert.Equal(t, "required", ve.Fields["name"])
	assert.Equal(t, "max", ve.Fields["monthly_allowance"])
}

func TestCreateEmployeeDuplicateExternalId(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	createEmployee(t, "TI001", models.EmployeeGradeStaff)
	_, err := models.CreateEmployee(ctx, &models.NewEmployee{
		EmployeeId: " TI001 ",
		Name:       "Copy",
		Department: "HR",
		Grade:      models.EmployeeGradeStaff,
		Location:   "Jakarta",
	})
	assert.ErrorIs(t, err, models.ErrDuplicateExternalId)
}

func TestUpdateEmployeeKeepsOrRederivesAllowance(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	e := createEmployee(t, "TI001", models.EmployeeGradeStaff)

	// explicit override
	e, err := models.UpdateEmployeeById(ctx, e.ID, &models.UpdateEmployee{
		Name: e.Name, Department: e.Department, Grade: e.Grade, Location: e.Location,
		MonthlyAllowance: intPtr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, e.MonthlyAllowance)

	// same grade, no allowance: the override stays
	e, err = models.UpdateEmployeeById(ctx, e.ID, &models.UpdateEmployee{
		Name: "Renamed", Department: e.Department, Grade: e.Grade, Location: e.Location,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, e.MonthlyAllowance)
	assert.Equal(t, "Renamed", e.Name)

	// new grade: derived again
	e, err = models.UpdateEmployeeById(ctx, e.ID, &models.UpdateEmployee{
		Name: e.Name, Department: e.Department, Grade: models.EmployeeGradeDirector, Location: e.Location,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, e.MonthlyAllowance)
	assert.Equal(t, "TI001", e.EmployeeId)

	_, err = models.UpdateEmployeeById(ctx, e.ID+100, &models.UpdateEmployee{
		Name: e.Name, Department: e.Department, Grade: e.Grade, Location: e.Location,
	})
	assert.ErrorIs(t, err, models.ErrEmployeeNotFound)
}

func TestToggleActiveEmployee(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	e := createEmployee(t, "TI001", models.EmployeeGradeStaff)
	e, err := models.ToggleActiveEmployee(ctx, e.ID, false)
	require.NoError(t, err)
	assert.False(t, e.Active())

	_, err = models.FindActiveEmployee(ctx, "TI001")
	assert.ErrorIs(t, err, models.ErrEmployeeNotFound)

	_, err = models.ToggleActiveEmployee(ctx, e.ID, true)
	require.NoError(t, err)
	found, err := models.FindActiveEmployee(ctx, "TI001")
	require.NoError(t, err)
	assert.Equal(t, e.ID, found.ID)
}

func TestDeleteEmployeeCascadesHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	recorder := newRecorder(newLedger(db, testNow))

	e := createEmployee(t, "TI001", models.EmployeeGradeStaff)
	other := createEmployee(t, "TI002", models.EmployeeGradeStaff)
	for _, id := range []string{"TI001", "TI001", "TI002"} {
		_, err := recorder.Distribute(ctx, id, 1)
		require.NoError(t, err)
	}

	deleted, err := models.DeleteEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "TI001", deleted.EmployeeId)

	var count int64
	require.NoError(t, db.Model(&models.GallonTransaction{}).Where("employee_id = ?", e.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.GallonTransaction{}).Where("employee_id = ?", other.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = models.GetEmployee(ctx, e.ID)
	assert.ErrorIs(t, err, models.ErrEmployeeNotFound)
	_, err = models.DeleteEmployee(ctx, e.ID)
	assert.ErrorIs(t, err, models.ErrEmployeeNotFound)
}

func TestForeignKeyCascadesOnRawDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	recorder := newRecorder(newLedger(db, testNow))

	e := createEmployee(t, "TI001", models.EmployeeGradeStaff)
	_, err := recorder.Distribute(ctx, "TI001", 2)
	require.NoError(t, err)

	require.NoError(t, db.Exec("DELETE FROM employees WHERE id = ?", e.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.GallonTransaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHistoryIsAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	recorder := newRecorder(newLedger(db, testNow))

	createEmployee(t, "TI001", models.EmployeeGradeStaff)
	created, err := recorder.Distribute(ctx, "TI001", 2)
	require.NoError(t, err)

	err = db.Model(created).Update("quantity", 1).Error
	assert.ErrorIs(t, err, config.ErrHistoryImmutable)

	err = db.Delete(created).Error
	assert.ErrorIs(t, err, config.ErrHistoryImmutable)

	var stored models.GallonTransaction
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, 2, stored.Quantity)
}

func TestListEmployees(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	recorder := newRecorder(newLedger(db, testNow))

	for i := 1; i <= models.EmployeePageSize+2; i++ {
		createEmployee(t, fmt.Sprintf("TI%03d", i), models.EmployeeGradeStaff)
	}
	for i := 0; i < 3; i++ {
		_, err := recorder.Distribute(ctx, "TI001", 1)
		require.NoError(t, err)
	}

	first, err := models.ListEmployees(ctx, 0)
	require.NoError(t, err)
	require.Len(t, first.Data, models.EmployeePageSize)
	assert.Equal(t, int64(models.EmployeePageSize+2), first.PageInfo.Total)
	assert.Equal(t, 2, first.PageInfo.LastPage)
	assert.True(t, *first.PageInfo.HasNextPage)
	assert.Equal(t, "TI001", first.Data[0].EmployeeId)
	assert.Equal(t, int64(3), first.Data[0].TransactionsCount)
	assert.Zero(t, first.Data[1].TransactionsCount)

	second, err := models.ListEmployees(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second.Data, 2)
	assert.False(t, *second.PageInfo.HasNextPage)
}

func TestGetEmployeeDetail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ledger := newLedger(db, testNow)
	recorder := newRecorder(ledger)

	e := createEmployee(t, "TI001", models.EmployeeGradeSupervisor)
	insertHistory(t, db, e, 9, testNow.AddDate(0, -1, 0))
	_, err := recorder.Distribute(ctx, "TI001", 4)
	require.NoError(t, err)

	detail, err := models.GetEmployeeDetail(ctx, ledger, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "March 2024", detail.CurrentMonth)
	assert.Equal(t, 4, detail.CurrentMonthStats.Used)
	assert.Equal(t, 6, detail.CurrentMonthStats.Remaining)
	assert.Equal(t, 10, detail.CurrentMonthStats.Total)
	assert.Equal(t, "40", detail.CurrentMonthStats.UsagePercent.String())
	assert.Len(t, detail.RecentTransactions, 2)
}
