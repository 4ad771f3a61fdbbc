package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a package is not found.
var ErrNotFound = errors.New("not found")

// NamedError is implemented by errors that have a stable name the
// presentation layer can switch on.
type NamedError interface {
	error
	ErrorName() string
}

// UnsupportedSourceError is returned for an unknown or non-registry source
// type. It is raised before any I/O.
type UnsupportedSourceError struct {
	Source string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("unsupported package source: %q", e.Source)
}

func (e *UnsupportedSourceError) ErrorName() string { return "UnsupportedSourceError" }

// PackageNotFoundError is returned when the registry responds with 404.
type PackageNotFoundError struct {
	Ecosystem string
	Name      string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package not found: [%s]%s", e.Ecosystem, e.Name)
}

func (e *PackageNotFoundError) ErrorName() string { return "PackageNotFoundError" }

func (e *PackageNotFoundError) Unwrap() error {
	return ErrNotFound
}

// RepositoryPatternMismatchError is returned when a declared repository URL
// does not have the expected clone-URL shape.
type RepositoryPatternMismatchError struct {
	URL     string
	Pattern string
}

func (e *RepositoryPatternMismatchError) Error() string {
	return fmt.Sprintf("repository url %q does not match %s", e.URL, e.Pattern)
}

func (e *RepositoryPatternMismatchError) ErrorName() string {
	return "RepositoryPatternMismatchError"
}
