package jsonhttp

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an OperationError.
type ErrorKind int

const (
	// KindRequestFailed means no usable HTTP response was produced.
	KindRequestFailed ErrorKind = iota + 1
	// KindInvalidResponse means a response arrived but failed validation.
	KindInvalidResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequestFailed:
		return "request-failed"
	case KindInvalidResponse:
		return "invalid-response"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against any *OperationError of the same kind.
var (
	ErrRequestFailed   = errors.New("request failed")
	ErrInvalidResponse = errors.New("invalid response")
)

// OperationError is the single error type returned by Validate and the Executor.
type OperationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *OperationError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return e.Kind == KindRequestFailed
	case ErrInvalidResponse:
		return e.Kind == KindInvalidResponse
	}
	return false
}

// KindOf returns the kind of the first OperationError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind, true
	}
	return 0, false
}

func requestFailed(err error) *OperationError {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	return &OperationError{Kind: KindRequestFailed, Message: msg, Err: err}
}

func invalidResponse(msg string, err error) *OperationError {
	return &OperationError{Kind: KindInvalidResponse, Message: msg, Err: err}
}
