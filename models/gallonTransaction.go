package models

import "time"

const RecentTransactionLimit = 20

// GallonTransaction is one distribution. Rows are append-only and written by the TransactionRecorder.
type GallonTransaction struct {
	ID                 int       `gorm:"primary_key" json:"id"`
	EmployeeId         int       `gorm:"not null;index;index:idx_gallon_employee_period,priority:1" json:"employee_id"`
	Quantity           int       `gorm:"not null" json:"quantity"`
	RemainingAllowance int       `gorm:"not null" json:"remaining_allowance"`
	TransactionDate    time.Time `gorm:"type:date;not null;index" json:"transaction_date"`
	PeriodKey          string    `gorm:"size:7;not null;index;index:idx_gallon_employee_period,priority:2" json:"period_key"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// filled by the employee loader on listings
	Employee *Employee `gorm:"-" json:"employee,omitempty"`
}

func (GallonTransaction) TableName() string {
	return "gallon_transactions"
}
