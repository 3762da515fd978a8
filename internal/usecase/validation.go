package usecase

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xavierca1/agency-leads/internal/scoring"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

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
	if err := v.RegisterValidation("leademail", func(fl validator.FieldLevel) bool {
		return scoring.ValidEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

func ValidateLeadPayload(p LeadPayload) []ValidationError {
	return collect(validate.Struct(p))
}

func ValidateNewsletterInput(in NewsletterInput) []ValidationError {
	return collect(validate.Struct(in))
}

func collect(err error) []ValidationError {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "payload", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_without_all":
		return "one of name, phone or email is required"
	case "required":
		return "is required"
	case "leademail":
		return "is invalid"
	default:
		return "failed " + fe.Tag()
	}
}

func validationFailure(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  errs,
	}
}
