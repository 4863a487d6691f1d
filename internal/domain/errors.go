package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"

	// Grading specific errors
	CodeQuizNotFound        ErrorCode = "QUIZ_NOT_FOUND"
	CodeAssignmentNotFound  ErrorCode = "ASSIGNMENT_NOT_FOUND"
	CodePerformanceNotFound ErrorCode = "PERFORMANCE_NOT_FOUND"
	CodeInvalidScore        ErrorCode = "INVALID_SCORE"
	CodeAlreadySubmitted    ErrorCode = "ALREADY_SUBMITTED"
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewValidationError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewAssignmentNotFoundError(assignmentID string) *DomainError {
	return NewError(CodeAssignmentNotFound, fmt.Sprintf("Assignment not found with ID: %s", assignmentID), nil)
}

func NewPerformanceNotFoundError(quizID, studentID string) *DomainError {
	return NewError(CodePerformanceNotFound,
		fmt.Sprintf("No performance record for student %s on quiz %s", studentID, quizID), nil)
}

// NewInvalidScoreError rejects faculty overrides outside the allowed range.
func NewInvalidScoreError(maxScore float64) *DomainError {
	return NewError(CodeInvalidScore, fmt.Sprintf("score must be between 0 and %.1f", maxScore), nil)
}

func NewAlreadySubmittedError(assignmentID string) *DomainError {
	return NewError(CodeAlreadySubmitted,
		fmt.Sprintf("Assignment %s has already been answered", assignmentID), nil)
}
