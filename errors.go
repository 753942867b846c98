package pcsrgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pcsrgo/pcsr"
)

var (
	// ErrNullValue is returned when an insert carries the reserved null
	// marker value 0.
	ErrNullValue = errors.New("edge value 0 is reserved for null slots")
)

// ErrVertexOutOfRange indicates an operation on a vertex beyond the declared
// capacity.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrVertexOutOfRange struct {
	Vertex   uint32
	Capacity uint32
	cause    error
}

func (e *ErrVertexOutOfRange) Error() string {
	return fmt.Sprintf("vertex %d out of range (capacity %d)", e.Vertex, e.Capacity)
}

func (e *ErrVertexOutOfRange) Unwrap() error { return e.cause }

// translateError maps core errors into the public contract.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var oor *pcsr.VertexOutOfRangeError
	if errors.As(err, &oor) {
		return &ErrVertexOutOfRange{Vertex: oor.Vertex, Capacity: oor.Capacity, cause: err}
	}
	if errors.Is(err, pcsr.ErrNullValue) {
		return fmt.Errorf("%w: %w", ErrNullValue, err)
	}

	return err
}
