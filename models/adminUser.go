package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/utils"
	"gorm.io/gorm"
)

// AdminUser can sign in to the administration routes.
type AdminUser struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      AdminRole `gorm:"size:1;not null;default:A" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAdminUser struct {
	Username string    `json:"username" validate:"required,max=100"`
	Name     string    `json:"name" validate:"required,max=100"`
	Password string    `json:"password" validate:"required,min=8"`
	Role     AdminRole `json:"role"`
}

type LoginInfo struct {
	Token string    `json:"token"`
	Name  string    `json:"name"`
	Role  AdminRole `json:"role"`
}

func (input *NewAdminUser) validate(ctx context.Context) error {
	input.Username = strings.TrimSpace(input.Username)
	input.Name = strings.TrimSpace(input.Name)
	if input.Role == "" {
		input.Role = AdminRoleAdmin
	}
	if err := validateStruct(input); err != nil {
		return err
	}
	if !input.Role.IsValid() {
		return newValidationError("role", "oneof")
	}
	if err := utils.ValidateUnique[AdminUser](ctx, "username", input.Username, 0); err != nil {
		if errors.Is(err, utils.ErrorDuplicate) {
			return newValidationError("username", "unique")
		}
		return storageError(err)
	}
	return nil
}

func CreateAdminUser(ctx context.Context, input *NewAdminUser) (*AdminUser, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := AdminUser{
		Username: input.Username,
		Name:     input.Name,
		Password: string(hashed),
		Role:     input.Role,
		IsActive: utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storageError(err)
	}
	return &user, nil
}

// Login checks the credentials and issues a bearer token.
func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	var user AdminUser
	if err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError(err)
	}

	// check login credentials
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !utils.DereferencePtr(user.IsActive, true) {
		return nil, ErrUserDisabled
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginInfo{
		Token: token,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

func GetAdminUser(ctx context.Context, id int) (*AdminUser, error) {
	db := config.GetDB()
	var user AdminUser
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, storageError(err)
	}
	return &user, nil
}
