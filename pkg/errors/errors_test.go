package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePackageNotFound, "package %s missing", "v2:abc")

	if err.Code != ErrCodePackageNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodePackageNotFound)
	}

	if err.Message != "package v2:abc missing" {
		t.Errorf("Message = %v, want %v", err.Message, "package v2:abc missing")
	}

	expected := "PACKAGE_NOT_FOUND: package v2:abc missing"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidGraph, cause, "decode envelope")

	if err.Code != ErrCodeInvalidGraph {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidGraph)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeChecksumMismatch, "test"),
			code:     ErrCodeChecksumMismatch,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeChecksumMismatch, "test"),
			code:     ErrCodeInvalidBlueprint,
			expected: false,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("import: %w", New(ErrCodePackageCycle, "inner")),
			code:     ErrCodePackageCycle,
			expected: true,
		},
		{
			name:     "capacity error",
			err:      &CapacityError{Category: "router", Required: 5, Available: 4},
			code:     ErrCodeLayoutOverflow,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		validate  bool
		reference bool
		capacity  bool
		checksum  bool
	}{
		{name: "graph", err: New(ErrCodeInvalidGraph, "x"), validate: true},
		{name: "config", err: New(ErrCodeInvalidConfig, "x"), validate: true},
		{name: "not found", err: New(ErrCodePackageNotFound, "x"), reference: true},
		{name: "corrupt", err: New(ErrCodePackageDataCorrupt, "x"), reference: true},
		{name: "overflow", err: fmt.Errorf("place: %w", &CapacityError{}), capacity: true},
		{name: "checksum", err: New(ErrCodeChecksumMismatch, "x"), checksum: true},
		{name: "plain", err: errors.New("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validate {
				t.Errorf("IsValidation() = %v, want %v", got, tt.validate)
			}
			if got := IsReference(tt.err); got != tt.reference {
				t.Errorf("IsReference() = %v, want %v", got, tt.reference)
			}
			if got := IsCapacity(tt.err); got != tt.capacity {
				t.Errorf("IsCapacity() = %v, want %v", got, tt.capacity)
			}
			if got := IsChecksum(tt.err); got != tt.checksum {
				t.Errorf("IsChecksum() = %v, want %v", got, tt.checksum)
			}
		})
	}
}

func TestCapacityError(t *testing.T) {
	err := &CapacityError{Category: "sorter", Required: 10, Available: 8}
	expected := `LAYOUT_OVERFLOW: region "sorter" holds 8 objects, 10 required`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}

	var ce *CapacityError
	if !errors.As(fmt.Errorf("layout: %w", err), &ce) {
		t.Fatal("errors.As should find CapacityError")
	}
	if ce.Required != 10 || ce.Available != 8 {
		t.Errorf("counts = %d/%d, want 10/8", ce.Required, ce.Available)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
