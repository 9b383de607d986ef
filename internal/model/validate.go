package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	v.RegisterValidation("location", func(fl validator.FieldLevel) bool {
		return IsLocation(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		n := sl.Current().Interface().(NewTransfer)
		if IsLocation(n.FromLocation) && IsLocation(n.ToLocation) && !ValidRoute(n.FromLocation, n.ToLocation) {
			sl.ReportError(n.ToLocation, "toLocation", "ToLocation", "route", "")
		}
	}, NewTransfer{})
	return v
}

// ValidationError lists the fields that failed validation, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validating: %w", err)
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "location":
		return "is not a known location"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "route":
		return "must differ from fromLocation"
	}
	return "is invalid"
}
