package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/validator"
)

// bindJSON decodes and validates the request body into obj. An empty body
// decodes as an empty object, so required fields are reported by name.
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}
	return bindError(err)
}

// bindError maps a binding failure onto an AppError with field messages
// where the failing field is known.
func bindError(err error) error {
	if fields, ok := validator.FieldErrors(err); ok {
		return apperrors.WithFields(apperrors.ErrValidation, fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.WithFields(apperrors.ErrValidation, map[string]string{typeErr.Field: validator.MsgInvalidValue})
	}

	// decimal.Decimal is the only custom unmarshaler in request bodies and
	// reports its failures with this prefix.
	if strings.HasPrefix(err.Error(), "error decoding string") {
		return apperrors.WithFields(apperrors.ErrValidation, map[string]string{"amount": validator.MsgInvalidNumber})
	}

	return apperrors.WithMessage(apperrors.ErrInvalidInput, "Malformed JSON request body")
}
