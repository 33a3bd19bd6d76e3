package models

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	TransactionPageSize = 20
	exportSheetName     = "Transactions"
)

type TransactionFilter struct {
	// Month is a period key (YYYY-MM); empty means every period.
	Month string `form:"month" json:"month"`
	// EmployeeId matches any external id containing it.
	EmployeeId string `form:"employee_id" json:"employee_id"`
	Page       int    `form:"page" json:"-"`
}

type PeriodOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type TransactionPage struct {
	Data            []*GallonTransaction `json:"data"`
	PageInfo        PageInfo             `json:"page_info"`
	AvailableMonths []PeriodOption       `json:"available_months"`
	Filters         TransactionFilter    `json:"filters"`
}

func (f *TransactionFilter) validate() error {
	f.Month = strings.TrimSpace(f.Month)
	f.EmployeeId = strings.TrimSpace(f.EmployeeId)
	if f.Month != "" {
		if _, err := utils.ParsePeriodKey(f.Month); err != nil {
			return newValidationError("month", "period")
		}
	}
	f.Page = normalizePage(f.Page)
	return nil
}

func (f TransactionFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Month != "" {
		db = db.Where("gallon_transactions.period_key = ?", f.Month)
	}
	if f.EmployeeId != "" {
		db = db.Joins("JOIN employees ON employees.id = gallon_transactions.employee_id").
			Where("employees.employee_id LIKE ?", "%"+f.EmployeeId+"%")
	}
	return db
}

// ListTransactions pages through history newest first. Employee is left nil for the caller to load.
func ListTransactions(ctx context.Context, filter TransactionFilter) (*TransactionPage, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	db := config.GetDB()

	var total int64
	if err := filter.apply(db.WithContext(ctx).Model(&GallonTransaction{})).Count(&total).Error; err != nil {
		return nil, storageError(err)
	}

	results := []*GallonTransaction{}
	if err := filter.apply(db.WithContext(ctx).Model(&GallonTransaction{})).
		Select("gallon_transactions.*").
		Order("gallon_transactions.created_at DESC").Order("gallon_transactions.id DESC").
		Limit(TransactionPageSize).
		Offset((filter.Page - 1) * TransactionPageSize).
		Find(&results).Error; err != nil {
		return nil, storageError(err)
	}

	periods, err := DistinctPeriods(ctx)
	if err != nil {
		return nil, err
	}

	return &TransactionPage{
		Data:            results,
		PageInfo:        newPageInfo(filter.Page, TransactionPageSize, total),
		AvailableMonths: periods,
		Filters:         filter,
	}, nil
}

// DistinctPeriods lists every period with history, newest first.
func DistinctPeriods(ctx context.Context) ([]PeriodOption, error) {
	db := config.GetDB()
	var keys []string
	if err := db.WithContext(ctx).Model(&GallonTransaction{}).
		Distinct("period_key").
		Order("period_key DESC").
		Pluck("period_key", &keys).Error; err != nil {
		return nil, storageError(err)
	}
	options := make([]PeriodOption, 0, len(keys))
	for _, k := range keys {
		options = append(options, PeriodOption{Value: k, Label: utils.PeriodLabel(k)})
	}
	return options, nil
}

// ExportTransactions renders every transaction matching filter (ignoring the page) as an xlsx workbook.
func ExportTransactions(ctx context.Context, filter TransactionFilter) ([]byte, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	db := config.GetDB()

	var rows []*GallonTransaction
	if err := filter.apply(db.WithContext(ctx).Model(&GallonTransaction{})).
		Select("gallon_transactions.*").
		Order("gallon_transactions.created_at DESC").Order("gallon_transactions.id DESC").
		Find(&rows).Error; err != nil {
		return nil, storageError(err)
	}

	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.EmployeeId)
	}
	employees, err := GetEmployeesByIds(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[int]*Employee, len(employees))
	for i := range employees {
		byId[employees[i].ID] = &employees[i]
	}
	for _, r := range rows {
		r.Employee = byId[r.EmployeeId]
	}

	return writeTransactionsXlsx(rows)
}

func writeTransactionsXlsx(rows []*GallonTransaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	// Add headers
	headers := []interface{}{"Date", "Month", "Employee ID", "Name", "Department", "Quantity", "Remaining Allowance"}
	if err := f.SetSheetRow(exportSheetName, "A1", &headers); err != nil {
		return nil, err
	}

	// Add data
	for i, r := range rows {
		var externalId, name, department string
		if r.Employee != nil {
			externalId = r.Employee.EmployeeId
			name = r.Employee.Name
			department = r.Employee.Department
		}
		values := []interface{}{
			r.TransactionDate.Format(utils.DateLayout),
			utils.PeriodLabel(r.PeriodKey),
			externalId,
			name,
			department,
			r.Quantity,
			r.RemainingAllowance,
		}
		if err := f.SetSheetRow(exportSheetName, "A"+fmt.Sprint(i+2), &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
