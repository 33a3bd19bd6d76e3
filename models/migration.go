package models

import (
	"log"

	"github.com/mmdatafocus/gallon_backend/config"
)

func MigrateTable() {
	if err := Migrate(); err != nil {
		log.Fatal(err)
	}
}

// Migrate creates or updates every table. Employees go first so the transaction foreign key resolves.
func Migrate() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Employee{},
		&GallonTransaction{},
		&AdminUser{},
	)
}
