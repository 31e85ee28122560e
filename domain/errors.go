package domain

// ValidationError reports client-side input rejected before any remote
// call was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string { return e.Field + ": " + e.Reason }

// TransportError reports a remote call that never produced a usable
// response: connection failures, timeouts and unexpected status codes.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that could not be parsed as the
// expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return e.Op + ": decode: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }
