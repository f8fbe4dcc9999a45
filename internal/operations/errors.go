package operations

import (
	"errors"
	"fmt"

	"github.com/hdmquan/logos-living-capital/internal/workbook"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeSheetNotFound ErrorType = "sheet_not_found"
	ErrorTypeOutOfBounds   ErrorType = "range_out_of_bounds"
	ErrorTypeProcessing    ErrorType = "processing"
	ErrorTypeStorage       ErrorType = "storage"
	ErrorTypeWorkbook      ErrorType = "workbook"
	ErrorTypeCancellation  ErrorType = "cancellation"
	ErrorTypeFatal         ErrorType = "fatal"
)

// OperationError is a failed pipeline step. Sheet is empty for run-level
// failures.
type OperationError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Sheet   string    `json:"sheet,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	switch {
	case e.Sheet != "":
		return fmt.Sprintf("[%s] %s %q: %s", e.Type, e.Step, e.Sheet, msg)
	case e.Step != "":
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, msg)
	default:
		return fmt.Sprintf("[%s] %s", e.Type, msg)
	}
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Fatal reports whether the error stops the whole run.
func (e *OperationError) Fatal() bool {
	return e.Sheet == ""
}

// NewSheetError classifies a failure of one sheet.
func NewSheetError(step, sheet string, cause error) *OperationError {
	errType, message := ErrorTypeProcessing, "sheet processing failed"
	switch {
	case errors.Is(cause, workbook.ErrSheetNotFound):
		errType, message = ErrorTypeSheetNotFound, "sheet not found"
	case errors.Is(cause, workbook.ErrRangeOutOfBounds):
		errType, message = ErrorTypeOutOfBounds, "window exceeds sheet"
	case step == StepWrite:
		errType, message = ErrorTypeStorage, "table could not be written"
	}
	return &OperationError{Type: errType, Step: step, Sheet: sheet, Message: message, Cause: cause}
}

// NewWorkbookError creates a run-level error for an unreadable workbook.
func NewWorkbookError(cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeWorkbook,
		Step:    StepOpen,
		Message: "workbook could not be opened",
		Cause:   cause,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "run was cancelled",
		Cause:   cause,
	}
}

// NewFatalError creates a new fatal error
func NewFatalError(step, message string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeFatal,
		Step:    step,
		Message: message,
		Cause:   cause,
	}
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeFatal
}
