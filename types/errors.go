package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when reading the front or back of an empty list.
	ErrEmpty = errors.New("list is empty")

	// ErrOutOfRange is matched by every *IndexError.
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvalidName is returned for file names too short to carry an
	// extension and at least one character.
	ErrInvalidName = errors.New("please provide the name of a text (.txt) file")
)

type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range for list of size %d", e.Index, e.Size)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrOutOfRange
}

// FileError reports a load or save that could not be carried out. The list
// involved is left unchanged.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
