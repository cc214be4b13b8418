package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"validation", &ValidationError{Reason: "nothing to search"}, `invalid input: nothing to search`},
		{"not found", &NotFoundError{Query: "emergency"}, `no results found for "emergency"`},
		{"remote status", &RemoteError{StatusCode: 503}, `invalid response code: 503`},
		{"remote message", &RemoteError{StatusCode: 200, Message: "Rate limit exceeded."}, `remote error: Rate limit exceeded.`},
		{"format", &FormatError{Input: "3:15"}, `duration "3:15" does not match required format MM:SS or HH:MM:SS`},
		{"wrong source type", &WrongSourceTypeError{ReleaseType: "Album", Want: "multi-track"}, `release type "Album" requires a multi-track source`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("resolving release: %w", &NotFoundError{Query: "q"})

	var notFound *NotFoundError
	if !errors.As(wrapped, &notFound) {
		t.Fatal("errors.As() failed to unwrap NotFoundError")
	}
	if notFound.Query != "q" {
		t.Errorf("Query = %q, expected %q", notFound.Query, "q")
	}
}
