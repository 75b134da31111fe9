package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"validation", Validation("bad"), ErrorTypeValidation},
		{"not found", NotFoundf("galaxy %s not found", "x"), ErrorTypeNotFound},
		{"forbidden", Forbidden("no"), ErrorTypeForbidden},
		{"wrapped app error", fmt.Errorf("outer: %w", Unauthorized("who")), ErrorTypeUnauthorized},
		{"plain error", errors.New("boom"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetType(tt.err); got != tt.want {
				t.Errorf("GetType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapExternal("redis unavailable", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected wrapped error to match its cause")
	}
	if err.Error() != "redis unavailable: connection refused" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}
