package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/eaglebank/ledger/internal/ledgererr"
	"github.com/eaglebank/ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Money reaches the amount rules as its exact decimal string.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("amount_scale", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && utils.WithinAmountScale(d)
	})
	_ = v.RegisterValidation("amount_positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	return v
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
	TraceID string            `json:"traceId,omitempty"`
}

// ValidateRequest returns one entry per failed rule, in field order.
func ValidateRequest(obj any) []ValidationError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Message: err.Error(), Type: "invalid"}}
	}

	validationErrors := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fe.Field(),
			Message: getErrorMsg(fe),
			Type:    fe.Tag(),
		})
	}
	return validationErrors
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Must be at least " + err.Param() + " characters long"
	case "max":
		return "Must be at most " + err.Param() + " characters long"
	case "numeric":
		return "Must contain only digits"
	case "amount_scale":
		return "Must have at most " + strconv.Itoa(utils.MaxAmountPlaces) + " decimal places"
	case "amount_positive":
		return "Value must be greater than 0"
	case "gt":
		return "Value must be greater than " + err.Param()
	case "gte":
		return "Value must be greater than or equal to " + err.Param()
	default:
		return "Invalid value"
	}
}

// RespondWithValidationError reports the first failed rule as the message and
// lists every failure in details.
func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	first := validationErrors[0]
	message := first.Message
	if first.Field != "" {
		message = first.Field + ": " + first.Message
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Message: message,
		Details: validationErrors,
	})
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Success: false, Message: message})
}

// RespondWithLedgerError maps err to its status code. Unclassified and
// internal errors are logged under a fresh trace id and answered generically.
func RespondWithLedgerError(c *gin.Context, logger *zap.Logger, err error) {
	le, ok := ledgererr.As(err)
	if ok && le.Kind != ledgererr.KindInternal {
		if le.Retryable() {
			c.Header("Retry-After", "0")
		}
		RespondWithError(c, le.Kind.HTTPStatus(), le.Message)
		return
	}

	traceID := uuid.NewString()
	logger.Error("request failed",
		zap.String("traceId", traceID),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	message := internalErrorMessage
	if ok {
		message = le.Message
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Message: message, TraceID: traceID})
}
