package types

import (
	"os"
)

// MinimumNameLength is the shortest accepted file name: a ".txt" style
// extension plus at least one character.
const MinimumNameLength = 4

// ValidateName checks that name is long enough to be a file name.
func ValidateName(name string) error {
	if len(name) < MinimumNameLength {
		return ErrInvalidName
	}
	return nil
}

// LoadFromFile appends the integers stored in path to the back of the list
// and returns how many were added. On error the list is left unchanged.
func (l *IntegerList) LoadFromFile(path string) (int, error) {
	if err := ValidateName(path); err != nil {
		return 0, &FileError{Op: "load", Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, &FileError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	values, err := Decode(f)
	if err != nil {
		return 0, &FileError{Op: "load", Path: path, Err: err}
	}

	l.Append(values...)
	return len(values), nil
}

// SaveToFile writes the text dump of the list to path, truncating any
// existing content.
func (l *IntegerList) SaveToFile(path string) (err error) {
	if err := ValidateName(path); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &FileError{Op: "save", Path: path, Err: cerr}
		}
	}()

	if err := Encode(f, l); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	return nil
}
