package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"wrapped unauthorized", fmt.Errorf("only admins: %w", ErrUnauthorized), http.StatusForbidden},
		{"invalid status", fmt.Errorf("bad: %w", ErrInvalidStatus), http.StatusBadRequest},
		{"invalid selection", ErrInvalidSelection, http.StatusBadRequest},
		{"duplicate", ErrDuplicateEntry, http.StatusBadRequest},
		{"not found", Wrap(ErrNotFound, "lead"), http.StatusNotFound},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
}
