/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("item", "123")

	expected := `item "123" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("item", "ABC")

	expected := `item "ABC" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("AlreadyExistsError should match ErrAlreadyExists")
	}

	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "operator",
			message:  "unsupported operator \"LIKE\"",
			expected: `validation failed for field "operator": unsupported operator "LIKE"`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "database id is required",
			expected: "validation failed: database id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)
		
			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}
		
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}
		
			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestConditionFailedError(t *testing.T) {
	err := NewConditionFailedError("replace", "attribute_exists(#pk)")

	expected := "condition check failed for replace operation: attribute_exists(#pk)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrConditionFailed) {
		t.Error("ConditionFailedError should match ErrConditionFailed")
	}

	if !IsConditionFailed(err) {
		t.Error("IsConditionFailed should return true for ConditionFailedError")
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewNotFoundError("container", "newDatabase/newContainer")
	wrapped := fmt.Errorf("resolve container: %w", original)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("Wrapped NotFoundError should still match ErrNotFound")
	}

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	// Ensure sentinel errors are distinct
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrConditionFailed,
		ErrUnsupported,
		ErrNotInitialized,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupportedError("cosmos", "change feed")

	if err.Error() != "cosmos driver does not support change feed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !IsUnsupported(fmt.Errorf("subscribe: %w", err)) {
		t.Error("IsUnsupported should see through wrapping")
	}
}

func TestRemoteError(t *testing.T) {
	if NewRemoteError("read", nil) != nil {
		t.Fatal("nil cause must stay nil")
	}

	cause := errors.New("connection reset")
	err := NewRemoteError("read container", cause)

	if !errors.Is(err, cause) {
		t.Error("RemoteError should unwrap to its cause")
	}
	if !IsRemote(fmt.Errorf("list: %w", err)) {
		t.Error("IsRemote should see through wrapping")
	}
	if IsNotFound(err) {
		t.Error("RemoteError must not be reported as not found")
	}
}
