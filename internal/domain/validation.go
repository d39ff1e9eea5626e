package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	lastNamePrefix = `(o'|von|von der|von und zu|van) ?`
	namePattern    = `[A-ZÄÖÜ][a-zäöüß]+`
)

var lastNameRegexp = regexp.MustCompile(`^(` + lastNamePrefix + `)?` + namePattern + `(-` + namePattern + `)?$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Date); ok {
			return d.Time
		}
		return nil
	}, Date{})

	_ = v.RegisterValidation("lastname", func(fl validator.FieldLevel) bool {
		return lastNameRegexp.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("past", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return t.Before(time.Now())
	})

	return v
}

// ValidateCustomer проверяет все поля клиента и возвращает полный список нарушений
func ValidateCustomer(c Customer) ValidationErrors {
	return toValidationErrors(validate.Struct(c))
}

// ValidateAccount проверяет данные аккаунта при создании клиента
func ValidateAccount(a AccountRequest) ValidationErrors {
	return toValidationErrors(validate.Struct(a))
}

// ValidateLastName проверяет фамилию по тем же правилам, что и ValidateCustomer
func ValidateLastName(s string) ValidationErrors {
	return validateVar("lastName", s, "required,lastname")
}

// ValidateEmail проверяет email по тем же правилам, что и ValidateCustomer
func ValidateEmail(s string) ValidationErrors {
	return validateVar("email", s, "required,email")
}

// ValidateHomepage проверяет URL домашней страницы
func ValidateHomepage(s string) ValidationErrors {
	return validateVar("homepage", s, "omitempty,url")
}

// ValidateCategory проверяет диапазон категории
func ValidateCategory(n int) ValidationErrors {
	return validateVar("category", n, fmt.Sprintf("min=%d,max=%d", MinCategory, MaxCategory))
}

func validateVar(field string, value any, tag string) ValidationErrors {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return ValidationErrors{{Field: field, Message: err.Error()}}
	}
	var out ValidationErrors
	for _, fe := range ve {
		out.Add(field, formatFieldError(field, fe))
	}
	return out
}

func toValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return ValidationErrors{{Message: err.Error()}}
	}
	var out ValidationErrors
	for _, fe := range ve {
		field := fieldPath(fe)
		out.Add(field, formatFieldError(field, fe))
	}
	return out
}

// fieldPath strips the root type name from the namespace: Customer.address.city -> address.city
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "lastname":
		return fmt.Sprintf("%s must start with a capital letter, optionally hyphenated", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "past":
		return fmt.Sprintf("%s must be in the past", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have length %s", field, fe.Param())
	case "numeric", "number":
		return fmt.Sprintf("%s must be numeric", field)
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", field)
	}
	return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
}
