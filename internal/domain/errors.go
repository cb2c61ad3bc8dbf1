package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the shelf server is unreachable
	ErrServerOffline = errors.New("shelf server is unreachable")

	// ErrBadResponse indicates a 2xx response whose body failed to parse
	ErrBadResponse = errors.New("malformed server response")

	// ErrUploadInFlight indicates a second upload was attempted while one is active
	ErrUploadInFlight = errors.New("an upload is already in flight")

	// ErrSourceUnavailable indicates the rendering surface could not load its source
	ErrSourceUnavailable = errors.New("document source failed to load")
)

// RemoteError carries the classified reason for a failed server exchange,
// e.g. "http_status:500" or a server-supplied message.
type RemoteError struct {
	Reason string
}

func (e *RemoteError) Error() string { return e.Reason }

// FailureReason maps an error from a server exchange onto the reason
// vocabulary surfaced to the user: "network_error", "bad_response",
// "http_status:<code>", or the server-supplied message.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		return remote.Reason
	case errors.Is(err, ErrServerOffline):
		return "network_error"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	default:
		return err.Error()
	}
}
