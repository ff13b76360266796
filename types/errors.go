package types

import (
	"errors"
)

// Error kinds. Connection and schema errors abort the run, the rest are
// reported and the affected unit of work is skipped.
var (
	ErrConnection = errors.New("connection error")
	ErrSchema     = errors.New("schema error")
	ErrEmbedding  = errors.New("embedding error")
	ErrInsert     = errors.New("insert error")
	ErrSearch     = errors.New("search error")
	ErrGeneration = errors.New("generation error")
)

type Error struct {
	Kind error
	Op   string
	Err  error
}

func NewError(kind error, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on the kind sentinel as well as the cause.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func IsFatal(err error) bool {
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrSchema)
}
