package models

import "github.com/mmdatafocus/gallon_backend/utils"

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

// key
func (e Employee) GetId() int {
	return e.ID
}

// placeholder for a transaction whose employee row is gone
func (e Employee) GetDefault(id int) Data {
	return Employee{
		ID:       id,
		IsActive: utils.NewFalse(),
	}
}
