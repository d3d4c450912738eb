package service

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "field and message",
			err: &ValidationError{
				Field:   "question",
				Message: "cannot be empty",
			},
			want: "validation error on field question: cannot be empty",
		},
		{
			name: "empty field",
			err: &ValidationError{
				Field:   "",
				Message: "invalid",
			},
			want: "validation error on field : invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapKind(t *testing.T) {
	tests := []struct {
		name    string
		kind    error
		err     error
		wantNil bool
		wantMsg string
	}{
		{
			name:    "nil error",
			kind:    ErrInference,
			err:     nil,
			wantNil: true,
		},
		{
			name:    "inference",
			kind:    ErrInference,
			err:     errors.New("timeout"),
			wantMsg: "failed to get answer: timeout",
		},
		{
			name:    "storage",
			kind:    ErrStorage,
			err:     errors.New("disk full"),
			wantMsg: "failed to access history: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapKind(tt.kind, tt.err)
			if tt.wantNil {
				if got != nil {
					t.Errorf("wrapKind() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("wrapKind() = nil, want error")
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("wrapKind() = %v, want %v", got.Error(), tt.wantMsg)
			}
			// Both the kind and the original error stay matchable
			if !errors.Is(got, tt.kind) {
				t.Error("wrapKind() should match kind")
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapKind() should wrap original error")
			}
		})
	}
}

func TestErrorConstants(t *testing.T) {
	if ErrInference == nil {
		t.Error("ErrInference should not be nil")
	}
	if ErrStorage == nil {
		t.Error("ErrStorage should not be nil")
	}
	if errors.Is(ErrInference, ErrStorage) {
		t.Error("ErrInference should not match ErrStorage")
	}
}
