package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// AppError carries a client-facing message; Err keeps the cause for logs.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func ValidationError(msg string) *AppError { return &AppError{Kind: KindValidation, Message: msg} }
func NotFoundError(msg string) *AppError   { return &AppError{Kind: KindNotFound, Message: msg} }
func ForbiddenError(msg string) *AppError  { return &AppError{Kind: KindForbidden, Message: msg} }
func ConflictError(msg string) *AppError   { return &AppError{Kind: KindConflict, Message: msg} }

// InternalError hides err behind the generic message.
func InternalError(op string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind of the first AppError in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// 常用错误信息
const (
	MsgUserExists          = "User with this email already exists"
	MsgInvalidCredentials  = "Invalid email or password"
	MsgInvalidRole         = "Invalid role"
	MsgUserNotFound        = "User not found"
	MsgProjectNotFound     = "Project not found"
	MsgProjectNameRequired = "Project name is required"
	MsgPhaseNotFound       = "Phase not found"
	MsgPhaseFieldsRequired = "Project ID, phase name, and phase order are required"
	MsgPhaseOrderPositive  = "Phase order must be a positive integer"
	MsgPhaseNameEmpty      = "Phase name cannot be empty"
	MsgPhaseHasWorkLogs    = "Cannot delete phase with existing work logs. Delete work logs first."
	MsgWorkLogNotFound     = "Work log not found"
	MsgWorkLogRequired     = "Project and work description are required"
	MsgHoursOutOfRange     = "Hours spent must be between 0 and 24"
	MsgPhaseNotInProject   = "Phase not found or does not belong to this project"
	MsgNotOwnerUpdate      = "You can only update your own work logs"
	MsgNotOwnerDelete      = "You can only delete your own work logs"
	MsgNoFieldsToUpdate    = "No fields to update"
)

func phaseOrderTaken(order int) *AppError {
	return ConflictError(fmt.Sprintf("Phase order %d already exists for this project", order))
}

// cannotBeNull is used for partial updates that null a required column.
func cannotBeNull(field string) *AppError {
	return ValidationError(field + " cannot be null")
}
