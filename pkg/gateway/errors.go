package gateway

import "fmt"

// CodeMalformedEnvelope is the RemoteError code used when the response body
// is not a JSON object.
const CodeMalformedEnvelope = -1

// TransportError is returned when the HTTP exchange itself failed: the
// request could not be sent or the status was not 200. StatusCode is zero
// for network failures.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is returned when the service answered with a non-zero code.
type RemoteError struct {
	Code    int
	Message string
	URL     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d from %s: %s", e.Code, e.URL, e.Message)
}
