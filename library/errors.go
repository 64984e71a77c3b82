package library

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no book in the catalog has the requested id.
	ErrNotFound = errors.New("no book with that id")
	// ErrAlreadyCheckedOut is returned when checking out a book that is lent.
	ErrAlreadyCheckedOut = errors.New("book is already checked out")
	// ErrNotCheckedOut is returned when returning a book that is on the shelf.
	ErrNotCheckedOut = errors.New("book is not checked out")
	// ErrDuplicateID is returned when adding or loading an id that is already used.
	ErrDuplicateID = errors.New("book id already exists")
)

// BookError ties one of the catalog error kinds to the id it was raised for.
type BookError struct {
	ID  string
	Err error
}

func (e *BookError) Error() string { return fmt.Sprintf("book %q: %v", e.ID, e.Err) }
func (e *BookError) Unwrap() error { return e.Err }

func notFound(id string) error          { return &BookError{ID: id, Err: ErrNotFound} }
func alreadyCheckedOut(id string) error { return &BookError{ID: id, Err: ErrAlreadyCheckedOut} }
func notCheckedOut(id string) error     { return &BookError{ID: id, Err: ErrNotCheckedOut} }
func duplicateID(id string) error       { return &BookError{ID: id, Err: ErrDuplicateID} }
