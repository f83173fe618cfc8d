package stellar

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a validation failure.
type ErrorCode string

// validation error codes
const (
	CodeMissingFee                  ErrorCode = "MissingFee"
	CodeMissingSequenceNumber       ErrorCode = "MissingSequenceNumber"
	CodeInvalidOperation            ErrorCode = "InvalidOperation"
	CodeMemoTooLarge                ErrorCode = "MemoTooLarge"
	CodeSignatureVerificationFailed ErrorCode = "SignatureVerificationFailed"
	CodeOther                       ErrorCode = "Other"
)

// ValidationError is returned when an envelope fails a structural check.
// Use errors.Is against the Err* sentinels to test the code.
type ValidationError struct {
	Code   ErrorCode
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation failed: " + string(e.Code)
	}
	return fmt.Sprintf("validation failed: %v: %v", e.Code, e.Detail)
}

// Is matches any ValidationError with the same code.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// validation errors
var (
	ErrMissingFee                  = &ValidationError{Code: CodeMissingFee}
	ErrMissingSequenceNumber       = &ValidationError{Code: CodeMissingSequenceNumber}
	ErrInvalidOperation            = &ValidationError{Code: CodeInvalidOperation}
	ErrMemoTooLarge                = &ValidationError{Code: CodeMemoTooLarge}
	ErrSignatureVerificationFailed = &ValidationError{Code: CodeSignatureVerificationFailed}
	ErrUnsupported                 = &ValidationError{Code: CodeOther}
)

func newValidationError(code ErrorCode, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// decode stages
const (
	StageBase64 = "base64"
	StageXDR    = "xdr"
)

// DecodeError is returned when an envelope cannot be decoded.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode envelope (%v): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// other errors
var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrInvalidAsset     = errors.New("invalid asset")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAccountNotFound  = errors.New("account not found on horizon")
	ErrLedgerNotFound   = errors.New("ledger not found on horizon")
	ErrTxNotFound       = errors.New("transaction not found on horizon")
)
