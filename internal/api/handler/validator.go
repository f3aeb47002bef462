package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("password", validPassword)
	_ = v.RegisterValidation("countrycode", validCountryCode)
	_ = v.RegisterValidation("listingstatus", func(fl validator.FieldLevel) bool {
		return domain.ListingStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("bookcondition", func(fl validator.FieldLevel) bool {
		return domain.BookCondition(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("exchangetype", func(fl validator.FieldLevel) bool {
		return domain.ExchangeType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Field failures come back
// as a *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return domain.NewValidationError(msgs...)
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + ": must not be blank"
	case "email":
		return field + ": must be a valid email"
	case "min":
		return fmt.Sprintf("%s: must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", field, fe.Param())
	case "password":
		return field + ": must contain an uppercase letter, a lowercase letter and a digit"
	case "countrycode":
		return field + ": must be a 2-letter country code"
	case "listingstatus":
		return field + ": must be one of AVAILABLE, RESERVED, EXCHANGED"
	case "bookcondition":
		return field + ": must be one of NEW, GOOD, USED"
	case "exchangetype":
		return field + ": must be one of EXCHANGE_ONLY, GIVEAWAY, EXCHANGE_OR_GIVEAWAY"
	case "role":
		return field + ": must be USER or ADMIN"
	default:
		return fmt.Sprintf("%s: failed validation (%s)", field, fe.Tag())
	}
}

func validPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func validCountryCode(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
