package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/gallon_backend/models"
	"gorm.io/gorm"
)

type employeeReader struct {
	db *gorm.DB
}

func (r *employeeReader) getEmployees(ctx context.Context, ids []int) []*dataloader.Result[*models.Employee] {
	results, err := models.GetEmployeesByIds(ctx, r.db, ids)
	if err != nil {
		return handleError[*models.Employee](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetEmployee(ctx context.Context, id int) (*models.Employee, error) {
	loaders := For(ctx)
	return loaders.employeeLoader.Load(ctx, id)()
}

// LoadTransactionEmployees fills Employee on every transaction with one batched query.
func LoadTransactionEmployees(ctx context.Context, transactions []*models.GallonTransaction) error {
	if len(transactions) == 0 {
		return nil
	}
	ids := make([]int, len(transactions))
	for i, t := range transactions {
		ids[i] = t.EmployeeId
	}
	employees, errs := For(ctx).employeeLoader.LoadMany(ctx, ids)()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	for i, t := range transactions {
		t.Employee = employees[i]
	}
	return nil
}
