// seed-admin creates or updates the admin console user.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin -password '...'
//
// DB_DRIVER=sqlite DB_PATH=gallon.db works the same way for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/models"
	"github.com/mmdatafocus/gallon_backend/utils"
	"gorm.io/gorm"
)

func main() {
	username := flag.String("username", "gallonAdmin", "admin username")
	password := flag.String("password", "", "Required: admin password (min 8 characters)")
	name := flag.String("name", "Gallon Admin", "display name")
	role := flag.String("role", string(models.AdminRoleAdmin), "A (admin) or V (viewer)")
	flag.Parse()

	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "-password is required (min 8 characters)")
		os.Exit(1)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	var existing models.AdminUser
	err := db.WithContext(ctx).Where("username = ?", *username).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u, err := models.CreateAdminUser(ctx, &models.NewAdminUser{
			Username: *username,
			Name:     *name,
			Password: *password,
			Role:     models.AdminRole(*role),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: username=%q role=%s\n", u.Username, u.Role)
		return
	}

	// Update existing user: reset password, name and role
	hashed, err := utils.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	if !models.AdminRole(*role).IsValid() {
		fmt.Fprintf(os.Stderr, "invalid role %q\n", *role)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"password":  string(hashed),
		"name":      *name,
		"is_active": true,
		"role":      *role,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated admin user: username=%q role=%s\n", *username, *role)
}
