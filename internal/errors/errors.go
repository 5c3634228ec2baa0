package errors

import (
	"fmt"
)

// UnexpectedStatusError represents a backend response with a status code
// outside the documented set for an endpoint
type UnexpectedStatusError struct {
	Operation string
	Status    int
}

// Error returns the error message
func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected backend response during %s: status %d", e.Operation, e.Status)
}

// DataContractError represents a backend response that violates the list
// record contract (not a list, not a record, or a record missing id/name)
type DataContractError struct {
	Operation string
	Reason    string
}

// Error returns the error message
func (e *DataContractError) Error() string {
	return fmt.Sprintf("data contract violation during %s: %s", e.Operation, e.Reason)
}

// ValidationError represents an error when user input validation fails
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// StateError represents an error related to stored conversation state
type StateError struct {
	UserID  int64
	Message string
}

// Error returns the error message
func (e *StateError) Error() string {
	return fmt.Sprintf("state error for user %d: %s", e.UserID, e.Message)
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Section string
	Message string
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Section, e.Message)
}
