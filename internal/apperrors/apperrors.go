// Package apperrors holds the error taxonomy shared by services, stores and
// handlers.
package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidPolicy        = errors.New("invalid aggregation policy")
	ErrInvalidRange         = errors.New("invalid time range")
	ErrInvalidEntry         = errors.New("invalid mood log entry")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotFound             = errors.New("not found")
	ErrConcurrentUpdate     = errors.New("concurrent update conflict")
	ErrRepairPartialFailure = errors.New("streak repair partially failed")
)

// UserFailure records one user whose repair did not complete.
type UserFailure struct {
	UserID uuid.UUID `json:"user_id"`
	Error  string    `json:"error"`
}

// RepairError is returned by a sweep that finished with failed users.
type RepairError struct {
	Failures []UserFailure
}

func (e *RepairError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.UserID.String())
	}
	return fmt.Sprintf("%s: %d user(s) failed [%s]", ErrRepairPartialFailure, len(e.Failures), strings.Join(ids, ", "))
}

func (e *RepairError) Is(target error) bool {
	return target == ErrRepairPartialFailure
}
