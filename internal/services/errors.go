package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced to callers. Match them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

// NotFoundError names the missing resource and the ids that could not be found
type NotFoundError struct {
	Resource string
	IDs      []uint
}

func (e *NotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	if len(ids) == 1 {
		return fmt.Sprintf("%s with id %s not found", e.Resource, ids[0])
	}
	return fmt.Sprintf("%ss with ids %s not found", e.Resource, strings.Join(ids, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a rejected input field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func notFound(resource string, ids ...uint) error {
	return &NotFoundError{Resource: resource, IDs: ids}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func accessDenied(conversationID, userID uint) error {
	return fmt.Errorf("%w: user %d is not part of conversation %d", ErrAccessDenied, userID, conversationID)
}
