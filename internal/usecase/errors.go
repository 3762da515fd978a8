package usecase

import "errors"

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidJSON    = "INVALID_JSON"
	CodeBotCheckFailed = "BOT_CHECK_FAILED"
	CodeDatabase       = "DATABASE_ERROR"
	CodeNotFound       = "NOT_FOUND"
)

var (
	errCRMNotConfigured = errors.New("crm client not configured")
	errCRMEmptyID       = errors.New("crm returned an empty lead id")
)

// DomainError is a client-side problem: bad input or a rejected submission.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is our fault: storage or an unexpected failure.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}
