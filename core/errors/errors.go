// Package errors provides the error taxonomy shared by the BioC record model,
// codec and validator.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrInvalidInput indicates malformed or unexpected input
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingField indicates a required field was read before being set
	ErrMissingField = errors.New("missing field")
	// ErrProtocol indicates a writer or reader was driven out of order
	ErrProtocol = errors.New("protocol violation")
	// ErrDuplicateID indicates an id collision within a scope
	ErrDuplicateID = errors.New("duplicate id")
	// ErrTextMismatch indicates annotation text disagreeing with its scope text
	ErrTextMismatch = errors.New("annotation text mismatch")
	// ErrOverlap indicates overlapping passage or sentence text
	ErrOverlap = errors.New("overlapping text")
	// ErrDanglingReference indicates a relation node naming an unknown id
	ErrDanglingReference = errors.New("dangling reference")
)

// ParseError represents malformed or unexpected XML in a BioC stream.
type ParseError struct {
	Format  string // Format being parsed (e.g., "BioC XML", "DTD")
	Path    string // File path, if applicable
	Line    int    // Input line, 0 if unknown
	Message string // Error details
	Err     error  // Underlying lexical error, if any
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("failed to parse %s at %s:%d: %s", e.Format, e.Path, e.Line, msg)
	case e.Path != "":
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, msg)
	case e.Line > 0:
		return fmt.Sprintf("failed to parse %s at line %d: %s", e.Format, e.Line, msg)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, msg)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// Is reports ParseError as invalid input even when it wraps a lexical error.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MissingFieldError reports a required field read before it was set.
type MissingFieldError struct {
	Record string // Record type (e.g., "collection", "passage")
	Field  string // Field name (e.g., "id", "offset")
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: required field %s is not set", e.Record, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// ProtocolViolationError reports misuse of the streaming writer or reader.
type ProtocolViolationError struct {
	Operation string // Operation that was attempted
	Reason    string // Why it is not allowed in the current state
	Err       error  // Underlying error, if any
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation: cannot %s: %s", e.Operation, e.Reason)
}

func (e *ProtocolViolationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrProtocol
}

// Is reports ProtocolViolationError as a protocol violation even when it
// wraps an I/O condition such as fs.ErrClosed.
func (e *ProtocolViolationError) Is(target error) bool {
	return target == ErrProtocol
}

// DuplicateIDError reports an annotation or relation id already present in
// the scope it is being added to.
type DuplicateIDError struct {
	Scope string // Owning scope (e.g., "passage@0")
	Kind  string // "annotation" or "relation"
	ID    string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: duplicate %s id %q", e.Scope, e.Kind, e.ID)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// AnnotationTextMismatchError reports an annotation whose declared text does
// not match the scope text at its location.
type AnnotationTextMismatchError struct {
	DocumentID   string
	AnnotationID string
	Offset       int    // Location offset
	Length       int    // Location length
	Expected     string // Text extracted from the scope at the location
	Actual       string // Declared annotation text
	Reason       string // Set when the location cannot be extracted at all
}

func (e *AnnotationTextMismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("document %s: annotation %s at %d:%d: %s",
			e.DocumentID, e.AnnotationID, e.Offset, e.Length, e.Reason)
	}
	return fmt.Sprintf("document %s: annotation %s at %d:%d: expected %q, actual %q",
		e.DocumentID, e.AnnotationID, e.Offset, e.Length, e.Expected, e.Actual)
}

func (e *AnnotationTextMismatchError) Unwrap() error {
	return ErrTextMismatch
}

// OverlapError reports a passage or sentence starting before the end of the
// text reconstructed so far.
type OverlapError struct {
	DocumentID string
	Scope      string // "passage" or "sentence"
	Offset     int    // Declared start offset
	End        int    // Reconstructed text length at that point
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("document %s: %s at offset %d overlaps text ending at %d",
		e.DocumentID, e.Scope, e.Offset, e.End)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlap
}

// DanglingReferenceError reports a relation node whose refid resolves to no
// annotation or relation reachable from the relation's scope.
type DanglingReferenceError struct {
	DocumentID string
	RelationID string
	RefID      string
	Role       string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("document %s: relation %s: node %q (role %q) references unknown id",
		e.DocumentID, e.RelationID, e.RefID, e.Role)
}

func (e *DanglingReferenceError) Unwrap() error {
	return ErrDanglingReference
}

// InvalidValueError reports a field holding a value outside its domain,
// such as a negative offset.
type InvalidValueError struct {
	DocumentID string
	Field      string
	Message    string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("document %s: %s: %s", e.DocumentID, e.Field, e.Message)
}

func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewMissingField creates a MissingFieldError
func NewMissingField(record, field string) *MissingFieldError {
	return &MissingFieldError{Record: record, Field: field}
}

// NewProtocol creates a ProtocolViolationError
func NewProtocol(operation, reason string) *ProtocolViolationError {
	return &ProtocolViolationError{Operation: operation, Reason: reason}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
