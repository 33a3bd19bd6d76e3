package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/gallon_backend/utils"
)

var validate = newValidator()

// field errors are keyed by json name
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateStruct(input any) error {
	if err := validate.Struct(input); err != nil {
		return &ValidationError{Fields: utils.ProcessValidationErrors(err)}
	}
	return nil
}
