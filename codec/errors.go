// Package codec reads and writes the binary term and type format.
//
// The format is a flat byte stream consumed strictly left to right. Terms
// and types are written as abstract binding trees whose variables are
// positional indices into the binders in scope (bound) or into a list of
// free variable names that precedes the tree.
package codec

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF      = errors.New("unexpected end of buffer")
	ErrUnknownTag         = errors.New("unknown tag")
	ErrVarintOverflow     = errors.New("varint overflows 64 bits")
	ErrInvalidUTF8        = errors.New("invalid UTF-8 text")
	ErrUnresolvedVariable = errors.New("variable index out of range")
	ErrTrailingBytes      = errors.New("trailing bytes after term")
	ErrUnencodable        = errors.New("value has no binary form")
)

// DecodeError reports where in the buffer decoding failed and what was being
// read at the time.
type DecodeError struct {
	Offset int
	What   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s at offset %d: %v", e.What, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
