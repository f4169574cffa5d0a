package parser

import "fmt"

// Error represents a structural error encountered while parsing a single entry.
// The runtime parser never surfaces these past Parse; they only unwind the
// current entry so that scanning can resume at the next entry header.
type Error struct {
	Pos     int
	Message string
}

// Error turns the error into a string
func (err *Error) Error() string {
	return err.Message
}

// newError creates a new error
func newError(pos int, msgFormat string, replacements ...interface{}) *Error {
	return &Error{
		Pos:     pos,
		Message: fmt.Sprintf(msgFormat, replacements...),
	}
}
