// Package apperr holds the error taxonomy shared by the agents.
//
// Agents convert every error defined here into a failure result themselves;
// anything else that reaches the dispatcher is treated as unexpected.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError means a required slot is missing or a value is malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError means a referenced product, customer or order does not exist.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Ref)
}

// Candidate is one of several records matching an ambiguous reference.
type Candidate struct {
	ID   int64
	Name string
}

type AmbiguousReferenceError struct {
	Entity     string
	Ref        string
	Candidates []Candidate
}

func (e *AmbiguousReferenceError) Error() string {
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = fmt.Sprintf("%d", c.ID)
	}
	return fmt.Sprintf("%q matches %d %ss (ids %s)", e.Ref, len(e.Candidates), e.Entity, strings.Join(ids, ", "))
}

// ConflictError is a uniqueness or referential conflict.
type ConflictError struct {
	Entity       string
	Field        string
	Value        string
	ExistingID   int64
	ExistingName string
}

func (e *ConflictError) Error() string {
	if e.ExistingID > 0 {
		return fmt.Sprintf("%s with %s %q already exists (id %d)", e.Entity, e.Field, e.Value, e.ExistingID)
	}
	return fmt.Sprintf("%s conflict on %s %q", e.Entity, e.Field, e.Value)
}

type InsufficientStockError struct {
	ProductID int64
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.Product, e.Available, e.Requested)
}

// LineErrors aggregates every per-line failure of a multi-line order.
type LineErrors struct {
	Errors []error
}

func (e *LineErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e *LineErrors) Unwrap() []error {
	return e.Errors
}

// CollaboratorFailure is a storage, render or mail call that failed or timed out.
type CollaboratorFailure struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorFailure) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorFailure) Unwrap() error {
	return e.Err
}

func Storage(err error) error {
	if err == nil || IsDomain(err) {
		return err
	}
	return &CollaboratorFailure{Collaborator: "storage", Err: err}
}

type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsDomain reports whether err belongs to the taxonomy above.
func IsDomain(err error) bool {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		ambiguous  *AmbiguousReferenceError
		conflict   *ConflictError
		stock      *InsufficientStockError
		lines      *LineErrors
		collab     *CollaboratorFailure
		internal   *InternalError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &notFound), errors.As(err, &ambiguous),
		errors.As(err, &conflict), errors.As(err, &stock), errors.As(err, &lines),
		errors.As(err, &collab), errors.As(err, &internal):
		return true
	}
	return false
}
