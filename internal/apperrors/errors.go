package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Code is the machine readable kind of an application error.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION_FAILED"
	CodeCreateFailed  Code = "CREATE_FAILED"
	CodeUpdateFailed  Code = "UPDATE_FAILED"
	CodeDeleteFailed  Code = "DELETE_FAILED"
)

// Sentinels for errors.Is. Only the code is compared.
var (
	ErrNotFound      = &Error{Code: CodeNotFound}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists}
	ErrValidation    = &Error{Code: CodeValidation}
	ErrCreateFailed  = &Error{Code: CodeCreateFailed}
	ErrUpdateFailed  = &Error{Code: CodeUpdateFailed}
	ErrDeleteFailed  = &Error{Code: CodeDeleteFailed}
)

// Error carries a user facing message together with its code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	message := e.Message
	if message == "" {
		message = strings.ToLower(strings.ReplaceAll(string(e.Code), "_", " "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", message, e.Err)
	}
	return message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || other == nil || e == nil {
		return false
	}
	return e.Code == other.Code
}

func newError(code Code, message string, cause error) error {
	return &Error{Code: code, Message: strings.TrimSpace(message), Err: cause}
}

func NotFound(message string) error {
	return newError(CodeNotFound, message, nil)
}

func AlreadyExists(message string) error {
	return newError(CodeAlreadyExists, message, nil)
}

// Validation builds a VALIDATION_FAILED error from a format string.
func Validation(format string, args ...interface{}) error {
	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		message = "invalid input"
	}
	return newError(CodeValidation, message, nil)
}

func CreateFailed(cause error) error {
	return wrapFailure(CodeCreateFailed, "create failed", cause)
}

func UpdateFailed(cause error) error {
	return wrapFailure(CodeUpdateFailed, "update failed", cause)
}

func DeleteFailed(cause error) error {
	return wrapFailure(CodeDeleteFailed, "delete failed", cause)
}

// wrapFailure keeps already classified errors intact so that a NOT_FOUND raised
// inside a transaction is not reported as a generic persistence failure.
func wrapFailure(code Code, message string, cause error) error {
	if cause == nil {
		return newError(code, message, nil)
	}
	var appErr *Error
	if errors.As(cause, &appErr) {
		return cause
	}
	if errors.Is(cause, gorm.ErrRecordNotFound) {
		return newError(CodeNotFound, "record not found", cause)
	}
	if IsDuplicateKey(cause) {
		return newError(CodeAlreadyExists, "record already exists", cause)
	}
	return newError(code, message, cause)
}

// CodeOf returns the code of the first *Error in the chain, or an empty code.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the user facing message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil && appErr.Message != "" {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var sqlState interface{ SQLState() string }
	if errors.As(err, &sqlState) {
		return sqlState.SQLState() == "23505"
	}

	return false
}
