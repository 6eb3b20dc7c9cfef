package core

import (
	"fmt"
)

// ValidationError is returned when caller input is rejected
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ClassifierError wraps a failure inside the classifier adapter
type ClassifierError struct {
	Op  string
	Err error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classifier %s failed: %v", e.Op, e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

// StorageError wraps a failure reading or writing a persisted store
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
