// Package validator provides custom validation functions for Gin's binding
// engine and the field messages shared with the service layer.
package validator

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"spendtrack/internal/models"
)

// Field messages.
const (
	MsgRequired      = "This field is required."
	MsgBlank         = "This field may not be blank."
	MsgInvalidNumber = "A valid number is required."
	MsgInvalidValue  = "Invalid value."
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("notblank", validateNotBlank)
		_ = v.RegisterValidation("amount", validateAmount)
	}
}

// MaxLengthMessage is the message for a string longer than max characters.
func MaxLengthMessage(max int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", max)
}

// AmountProblem returns the message describing why d does not fit the
// amount column, or "" when it fits. Digits are counted as written, so
// "3.500" has three decimal places.
func AmountProblem(d decimal.Decimal) string {
	total, decimals := amountDigits(d)
	maxWhole := int64(models.AmountMaxDigits - models.AmountDecimalPlaces)

	switch {
	case total > models.AmountMaxDigits:
		return fmt.Sprintf("Ensure that there are no more than %d digits in total.", models.AmountMaxDigits)
	case decimals > models.AmountDecimalPlaces:
		return fmt.Sprintf("Ensure that there are no more than %d decimal places.", models.AmountDecimalPlaces)
	case total-decimals > maxWhole:
		return fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxWhole)
	}
	return ""
}

// amountDigits counts total and fractional digits from the coefficient and
// exponent. It never expands d, whose exponent may be as large as 2^31.
func amountDigits(d decimal.Decimal) (total, decimals int64) {
	coef := new(big.Int).Abs(d.Coefficient())
	// Anything beyond uint64 has at least 20 digits.
	digits := int64(20)
	if coef.IsUint64() {
		digits = int64(len(strconv.FormatUint(coef.Uint64(), 10)))
	}

	exp := int64(d.Exponent())
	switch {
	case exp >= 0:
		return digits + exp, 0
	case -exp > digits:
		return -exp, -exp
	default:
		return digits, -exp
	}
}

// FieldErrors converts binding validation errors into per-field messages keyed
// by JSON field name. It returns false when err is not a validation error.
func FieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, exists := fields[fe.Field()]; exists {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "notblank":
		return MsgBlank
	case "max":
		if n, err := strconv.Atoi(fe.Param()); err == nil {
			return MaxLengthMessage(n)
		}
	case "amount":
		if s, ok := fe.Value().(string); ok {
			if d, err := decimal.NewFromString(s); err == nil {
				if msg := AmountProblem(d); msg != "" {
					return msg
				}
			}
		}
		return MsgInvalidNumber
	}
	return MsgInvalidValue
}

// jsonFieldName reports fields by their JSON name so error keys match the
// request body.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// decimalValue exposes decimal.Decimal to the validator in exponent form
// ("350e-2"), which keeps the written precision and stays short.
func decimalValue(v reflect.Value) interface{} {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		return d.Coefficient().String() + "e" + strconv.Itoa(int(d.Exponent()))
	}
	return nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return AmountProblem(d) == ""
}
