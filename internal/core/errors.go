package core

import "fmt"

// ValidationError signals malformed input detected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// NotFoundError signals a remote lookup that completed but matched nothing.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no results found for %q", e.Query)
}

// RemoteError signals a non-2xx transport response or an application-level
// error message returned by the remote service.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error: %s", e.Message)
	}
	return fmt.Sprintf("invalid response code: %d", e.StatusCode)
}

// FormatError signals a duration string that does not match the MM:SS or
// HH:MM:SS grammar.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("duration %q does not match required format MM:SS or HH:MM:SS", e.Input)
}

// WrongSourceTypeError signals a release whose shape does not match the
// chosen stream source variant.
type WrongSourceTypeError struct {
	ReleaseType string
	Want        string
}

func (e *WrongSourceTypeError) Error() string {
	return fmt.Sprintf("release type %q requires a %s source", e.ReleaseType, e.Want)
}
