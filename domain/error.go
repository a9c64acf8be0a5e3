// Package domain defines error types for the catalog client.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ProductNotFoundError is returned when a product with the given ID is not in the loaded list
type ProductNotFoundError struct {
	ProductID int
}

// Error implements the error interface for ProductNotFoundError
func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: id=%d", e.ProductID)
}

// Is allows proper error type checking with errors.Is()
func (e *ProductNotFoundError) Is(target error) bool {
	_, ok := target.(*ProductNotFoundError)
	return ok
}

// ValidationError is returned when a product draft fails local checks.
// Fields maps the offending field name to a user-facing message.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// Field returns the message attached to name, or "".
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

// Is allows proper error type checking with errors.Is()
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// GatewayError is returned when a call to the remote catalog fails at the
// transport or HTTP status level. Message is safe to show to the user.
type GatewayError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

// Error implements the error interface for GatewayError
func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is allows proper error type checking with errors.Is()
func (e *GatewayError) Is(target error) bool {
	_, ok := target.(*GatewayError)
	return ok
}

// Helper functions for creating errors with context

// NewProductNotFoundError creates a new ProductNotFoundError
func NewProductNotFoundError(productID int) error {
	return &ProductNotFoundError{ProductID: productID}
}

// NewValidationError creates a ValidationError from a field -> message map
func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// NewGatewayError creates a new GatewayError
func NewGatewayError(op string, status int, message string, err error) error {
	return &GatewayError{Op: op, Status: status, Message: message, Err: err}
}

// Type assertion helpers for use with errors.As()

// IsProductNotFoundError checks if an error is a ProductNotFoundError
func IsProductNotFoundError(err error) bool {
	var pnf *ProductNotFoundError
	return errors.As(err, &pnf)
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsGatewayError checks if an error is a GatewayError
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
