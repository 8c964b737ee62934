package common

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/timetable-import/constants"
	"github.com/joseph-ayodele/timetable-import/internal/entity"
)

// HHMM is the accepted shape of entry times.
var HHMM = regexp.MustCompile(`^[0-2]?[0-9]:[0-5][0-9]$`)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the weekday and hhmm rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return constants.IsWeekday(fl.Field().String())
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return HHMM.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateEntry checks the output invariants of a single entry.
func ValidateEntry(e entity.ExtractedEntry) error {
	err := Validator().Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewAppError("VALIDATION_ERROR", "entry validation failed", err)
	}
	fields := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, ValidationError{Field: fe.Field(), Value: fe.Value(), Message: ruleMessage(fe.Tag())})
	}
	return NewAppError("VALIDATION_ERROR", joinValidationErrors(fields), ErrValidation)
}

func ruleMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "weekday":
		return "must be a weekday name"
	case "hhmm":
		return "must be HH:MM"
	default:
		return "failed " + tag
	}
}

func joinValidationErrors(errs []ValidationError) string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Error())
	}
	return strings.Join(messages, "; ")
}

// ParseUUID parses a request identifier, returning an invalid-input AppError on failure.
func ParseUUID(field, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, NewAppError("INVALID_ARGUMENT", field+" is required", ErrInvalidInput)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, NewAppError("INVALID_ARGUMENT", field+" must be a valid UUID", ErrInvalidInput)
	}
	return id, nil
}
