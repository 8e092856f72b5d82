package workshop

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance builds the shared validator. Field names are reported
// with their JSON names; decimals compare as numbers and dates as strings so
// the usual gt/gte/required tags apply to them.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(Date); ok {
				return d.String()
			}
			return nil
		}, Date{})
		validate = v
	})
	return validate
}

// Validate checks struct tags and reports the first failure as a *ValidationError.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		msg := "failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return &ValidationError{Field: field, Rule: fe.Tag(), Message: msg}
	}
	return &ValidationError{Field: "input", Rule: "invalid", Message: fmt.Sprint(err)}
}

// CheckContactRole requires id to name a contact holding role. field is
// the JSON field blamed when the contact lacks it.
func CheckContactRole(st State, field string, id ContactID, role ContactRole) error {
	c, ok := st.Contact(id)
	if !ok {
		return NewNotFound("contact", id)
	}
	if !c.HasRole(role) {
		return Invalid(field, "role", fmt.Sprintf("contact %d is not a %s", id, strings.ToLower(string(role))))
	}
	return nil
}
