package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const EmployeePageSize = 15

type Employee struct {
	ID               int                 `gorm:"primary_key" json:"id"`
	EmployeeId       string              `gorm:"size:50;not null;uniqueIndex" json:"employee_id"`
	Name             string              `gorm:"size:255;not null" json:"name"`
	Department       string              `gorm:"size:255;not null" json:"department"`
	Grade            EmployeeGrade       `gorm:"size:50;not null" json:"grade"`
	Location         string              `gorm:"size:255;not null" json:"location"`
	MonthlyAllowance int                 `gorm:"not null;default:0" json:"monthly_allowance"`
	IsActive         *bool               `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	Transactions     []GallonTransaction `gorm:"foreignKey:EmployeeId;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

type NewEmployee struct {
	EmployeeId       string        `json:"employee_id" validate:"required,max=50"`
	Name             string        `json:"name" validate:"required,max=255"`
	Department       string        `json:"department" validate:"required,max=255"`
	Grade            EmployeeGrade `json:"grade" validate:"required,max=50"`
	Location         string        `json:"location" validate:"required,max=255"`
	MonthlyAllowance *int          `json:"monthly_allowance" validate:"omitempty,min=0,max=100"`
	IsActive         *bool         `json:"is_active"`
}

// UpdateEmployee has no employee_id: the external id never changes once assigned.
type UpdateEmployee struct {
	Name             string        `json:"name" validate:"required,max=255"`
	Department       string        `json:"department" validate:"required,max=255"`
	Grade            EmployeeGrade `json:"grade" validate:"required,max=50"`
	Location         string        `json:"location" validate:"required,max=255"`
	MonthlyAllowance *int          `json:"monthly_allowance" validate:"omitempty,min=0,max=100"`
	IsActive         *bool         `json:"is_active"`
}

type EmployeeListItem struct {
	Employee
	TransactionsCount int64 `json:"transactions_count"`
}

type EmployeePage struct {
	Data     []*EmployeeListItem `json:"data"`
	PageInfo PageInfo            `json:"page_info"`
}

type EmployeeDetail struct {
	Employee           *Employee            `json:"employee"`
	CurrentMonthStats  *AllowanceUsage      `json:"current_month_stats"`
	CurrentMonth       string               `json:"current_month"`
	RecentTransactions []*GallonTransaction `json:"transactions"`
}

/*
caches:
	Employee:$employee_id (active employees only, read by the kiosk lookup)
*/

func (e Employee) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Employee](e.EmployeeId)
}

func (e Employee) Active() bool {
	return utils.DereferencePtr(e.IsActive, true)
}

func (input *NewEmployee) trim() {
	input.EmployeeId = strings.TrimSpace(input.EmployeeId)
	input.Name = strings.TrimSpace(input.Name)
	input.Department = strings.TrimSpace(input.Department)
	input.Grade = EmployeeGrade(strings.TrimSpace(string(input.Grade)))
	input.Location = strings.TrimSpace(input.Location)
}

func (input *UpdateEmployee) trim() {
	input.Name = strings.TrimSpace(input.Name)
	input.Department = strings.TrimSpace(input.Department)
	input.Grade = EmployeeGrade(strings.TrimSpace(string(input.Grade)))
	input.Location = strings.TrimSpace(input.Location)
}

func (input *NewEmployee) validate(ctx context.Context) error {
	input.trim()
	if err := validateStruct(input); err != nil {
		return err
	}
	if input.MonthlyAllowance == nil && !input.Grade.IsKnown() {
		return newValidationError("monthly_allowance", "required")
	}
	// employee_id
	if err := utils.ValidateUnique[Employee](ctx, "employee_id", input.EmployeeId, 0); err != nil {
		return storageError(err)
	}
	return nil
}

func (input *UpdateEmployee) validate() error {
	input.trim()
	return validateStruct(input)
}

// allowanceFor picks the explicit allowance, else the grade's.
func allowanceFor(explicit *int, grade EmployeeGrade) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	v, ok := grade.Allowance()
	if !ok {
		return 0, newValidationError("monthly_allowance", "required")
	}
	return v, nil
}

func CreateEmployee(ctx context.Context, input *NewEmployee) (*Employee, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	allowance, err := allowanceFor(input.MonthlyAllowance, input.Grade)
	if err != nil {
		return nil, err
	}

	isActive := utils.DereferencePtr(input.IsActive, true)
	employee := Employee{
		EmployeeId:       input.EmployeeId,
		Name:             input.Name,
		Department:       input.Department,
		Grade:            input.Grade,
		Location:         input.Location,
		MonthlyAllowance: allowance,
		IsActive:         &isActive,
	}

	// db action
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&employee).Error; err != nil {
		config.LogError(config.GetLogger(), "employee.go", "CreateEmployee", "Create", input, err)
		return nil, storageError(err)
	}
	return &employee, nil
}

func UpdateEmployeeById(ctx context.Context, id int, input *UpdateEmployee) (*Employee, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	employee, err := GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	// an unchanged grade keeps the stored allowance
	allowance := employee.MonthlyAllowance
	if input.MonthlyAllowance != nil || input.Grade != employee.Grade {
		allowance, err = allowanceFor(input.MonthlyAllowance, input.Grade)
		if err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"Name":             input.Name,
		"Department":       input.Department,
		"Grade":            input.Grade,
		"Location":         input.Location,
		"MonthlyAllowance": allowance,
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}

	// db action
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(employee).Updates(updates).Error; err != nil {
		config.LogError(config.GetLogger(), "employee.go", "UpdateEmployeeById", "Updates", input, err)
		return nil, storageError(err)
	}
	if err := employee.RemoveInstanceRedis(); err != nil {
		config.LogError(config.GetLogger(), "employee.go", "UpdateEmployeeById", "RemoveInstanceRedis", employee.EmployeeId, err)
	}
	return GetEmployee(ctx, id)
}

// DeleteEmployee removes the employee and every transaction it owns.
func DeleteEmployee(ctx context.Context, id int) (*Employee, error) {
	employee, err := GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = utils.SetAllowHistoryDeleteInContext(ctx, true)
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&GallonTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(employee).Error
	})
	if err != nil {
		config.LogError(config.GetLogger(), "employee.go", "DeleteEmployee", "Transaction", id, err)
		return nil, storageError(err)
	}
	if err := employee.RemoveInstanceRedis(); err != nil {
		config.LogError(config.GetLogger(), "employee.go", "DeleteEmployee", "RemoveInstanceRedis", employee.EmployeeId, err)
	}
	deletedBy, _ := utils.GetUsernameFromContext(ctx)
	deletedById, _ := utils.GetUserIdFromContext(ctx)
	config.LogInfo(config.GetLogger(), "employee.go", "DeleteEmployee", "employee deleted with its history", logrus.Fields{
		"employee_id":   employee.EmployeeId,
		"deleted_by":    deletedBy,
		"deleted_by_id": deletedById,
	})
	return employee, nil
}

func ToggleActiveEmployee(ctx context.Context, id int, isActive bool) (*Employee, error) {
	employee, err := GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(employee).Update("IsActive", isActive).Error; err != nil {
		return nil, storageError(err)
	}
	if err := employee.RemoveInstanceRedis(); err != nil {
		config.LogError(config.GetLogger(), "employee.go", "ToggleActiveEmployee", "RemoveInstanceRedis", employee.EmployeeId, err)
	}
	employee.IsActive = &isActive
	return employee, nil
}

// GetEmployee fetches by surrogate id regardless of active state.
func GetEmployee(ctx context.Context, id int) (*Employee, error) {
	db := config.GetDB()
	var employee Employee
	if err := db.WithContext(ctx).First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, storageError(err)
	}
	return &employee, nil
}

// FindActiveEmployee resolves an external id for the kiosk, cache first.
func FindActiveEmployee(ctx context.Context, externalId string) (*Employee, error) {
	externalId = strings.TrimSpace(externalId)
	if externalId == "" {
		return nil, ErrEmployeeNotFound
	}

	cached, err := utils.RetrieveRedis[Employee](externalId)
	if err != nil {
		// cache trouble never blocks a lookup
		config.LogError(config.GetLogger(), "employee.go", "FindActiveEmployee", "RetrieveRedis", externalId, err)
	}
	if cached != nil && cached.Active() {
		return cached, nil
	}

	db := config.GetDB()
	var employee Employee
	if err := db.WithContext(ctx).
		Where("employee_id = ? AND is_active = ?", externalId, true).
		Take(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, storageError(err)
	}

	if err := utils.StoreRedis[Employee](&employee, externalId); err != nil {
		config.LogError(config.GetLogger(), "employee.go", "FindActiveEmployee", "StoreRedis", externalId, err)
	}
	return &employee, nil
}

// GetEmployeesByIds returns employees in no particular order; missing ids are skipped.
func GetEmployeesByIds(ctx context.Context, db *gorm.DB, ids []int) ([]Employee, error) {
	var results []Employee
	if len(ids) == 0 {
		return results, nil
	}
	if err := db.WithContext(ctx).Where("id IN ?", utils.UniqueSlice(ids)).Find(&results).Error; err != nil {
		return nil, storageError(err)
	}
	return results, nil
}

func ListEmployees(ctx context.Context, page int) (*EmployeePage, error) {
	page = normalizePage(page)
	db := config.GetDB()

	var total int64
	if err := db.WithContext(ctx).Model(&Employee{}).Count(&total).Error; err != nil {
		return nil, storageError(err)
	}

	var rows []*EmployeeListItem
	err := db.WithContext(ctx).Model(&Employee{}).
		Select("employees.*, (SELECT COUNT(*) FROM gallon_transactions WHERE gallon_transactions.employee_id = employees.id) AS transactions_count").
		Order("employees.id").
		Limit(EmployeePageSize).
		Offset((page - 1) * EmployeePageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, storageError(err)
	}
	if rows == nil {
		rows = []*EmployeeListItem{}
	}

	return &EmployeePage{
		Data:     rows,
		PageInfo: newPageInfo(page, EmployeePageSize, total),
	}, nil
}

// GetEmployeeDetail returns the employee with current month usage and its 20 most recent transactions.
func GetEmployeeDetail(ctx context.Context, ledger *AllowanceLedger, id int) (*EmployeeDetail, error) {
	employee, err := GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	usage, err := ledger.Usage(ctx, employee)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var recent []*GallonTransaction
	if err := db.WithContext(ctx).
		Where("employee_id = ?", employee.ID).
		Order("created_at DESC").Order("id DESC").
		Limit(RecentTransactionLimit).
		Find(&recent).Error; err != nil {
		return nil, storageError(err)
	}

	return &EmployeeDetail{
		Employee:           employee,
		CurrentMonthStats:  usage,
		CurrentMonth:       utils.PeriodLabel(ledger.CurrentPeriod()),
		RecentTransactions: recent,
	}, nil
}
