package classify

import "fmt"

// Kind distinguishes where in the pipeline a request failed, so the
// transport layer can map each failure to the right HTTP status.
type Kind int

const (
	// BadInput is a rejected upload: disallowed extension or oversize.
	BadInput Kind = iota
	// DecodeFailure is a payload that could not be decoded as an image.
	DecodeFailure
	// InferenceFailure is a model error or unusable model output.
	InferenceFailure
)

func (k Kind) String() string {
	switch k {
	case BadInput:
		return "bad input"
	case DecodeFailure:
		return "decode failure"
	case InferenceFailure:
		return "inference failure"
	}
	return "unknown"
}

// Error is a pipeline failure tagged with the stage it came from.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.err)
}

func (e *Error) Unwrap() error { return e.err }

// Detail is the message shown to the client for client-facing kinds,
// without the kind prefix.
func (e *Error) Detail() string { return e.err.Error() }

// ClientFacing reports whether the error is the client's fault and its
// message is safe to return in a response body.
func (e *Error) ClientFacing() bool {
	return e.Kind == BadInput || e.Kind == DecodeFailure
}

func badInput(format string, args ...any) *Error {
	return &Error{Kind: BadInput, err: fmt.Errorf(format, args...)}
}

func decodeFailure(err error) *Error {
	return &Error{Kind: DecodeFailure, err: err}
}

func inferenceFailure(err error) *Error {
	return &Error{Kind: InferenceFailure, err: err}
}
