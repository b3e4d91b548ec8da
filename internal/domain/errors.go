package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every error returned by the services wraps exactly one of these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrPermission       = errors.New("permission denied")
	ErrExternalDelivery = errors.New("external delivery failed")
)

var (
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrTaskNotFound        = fmt.Errorf("%w: task not found", ErrNotFound)
	ErrStepNotFound        = fmt.Errorf("%w: step not found", ErrNotFound)
	ErrWalletNotFound      = fmt.Errorf("%w: wallet not found", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("%w: transaction not found", ErrNotFound)
	ErrBusinessNotFound    = fmt.Errorf("%w: business not found", ErrNotFound)
	ErrRoleNotFound        = fmt.Errorf("%w: role not found", ErrNotFound)
	ErrPermissionNotFound  = fmt.Errorf("%w: permission not found", ErrNotFound)
	ErrMediaNotFound       = fmt.Errorf("%w: media not found", ErrNotFound)
	ErrAttemptNotFound     = fmt.Errorf("%w: kyc attempt not found", ErrNotFound)

	ErrInsufficientBalance = fmt.Errorf("%w: insufficient available balance", ErrConflict)
	ErrAlreadyProcessed    = fmt.Errorf("%w: earning already recorded for this task", ErrConflict)
	ErrTaskNotAcceptable   = fmt.Errorf("%w: task is not available for acceptance", ErrConflict)
	ErrTaskNotApprovable   = fmt.Errorf("%w: task is not marked as done", ErrConflict)
	ErrTaskNotInProgress   = fmt.Errorf("%w: task is not in progress", ErrConflict)
	ErrTaskStepsLocked     = fmt.Errorf("%w: steps cannot change once the task is done", ErrConflict)
	ErrAlreadyVerified     = fmt.Errorf("%w: user is already verified", ErrConflict)
	ErrDuplicateValue      = fmt.Errorf("%w: value already in use", ErrConflict)

	ErrAdminOnly             = fmt.Errorf("%w: admin only", ErrPermission)
	ErrNotVerified           = fmt.Errorf("%w: user is not verified", ErrPermission)
	ErrNotAssigned           = fmt.Errorf("%w: task is not assigned to user", ErrPermission)
	ErrKYCLocked             = fmt.Errorf("%w: kyc is verified and locked", ErrPermission)
	ErrKYCPendingReview      = fmt.Errorf("%w: kyc is pending review", ErrPermission)
	ErrKYCResubmissionDenied = fmt.Errorf("%w: resubmission is not allowed", ErrPermission)
	ErrIdentityLocked        = fmt.Errorf("%w: identity fields are locked after verification", ErrPermission)
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// IncompleteStepsError blocks task completion and names the offending steps.
type IncompleteStepsError struct {
	StepIDs []uint
}

func (e *IncompleteStepsError) Error() string {
	return fmt.Sprintf("all steps must be completed; incomplete steps: %v", e.StepIDs)
}

func (e *IncompleteStepsError) Unwrap() error {
	return ErrValidation
}

// RateLimitError is returned when OTP issuance for a phone exceeds its window.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many otp requests, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return ErrConflict
}
