package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestPackageNotFoundError(t *testing.T) {
	err := fmt.Errorf("fetching: %w", &PackageNotFoundError{Ecosystem: "npm", Name: "@scope/missing"})

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}

	var named NamedError
	if !errors.As(err, &named) {
		t.Fatal("errors.As(err, NamedError) = false")
	}
	if named.ErrorName() != "PackageNotFoundError" {
		t.Errorf("ErrorName() = %q", named.ErrorName())
	}
	if got := named.Error(); got != "package not found: [npm]@scope/missing" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorNames(t *testing.T) {
	tests := []struct {
		err  NamedError
		want string
	}{
		{&UnsupportedSourceError{Source: "pypi"}, "UnsupportedSourceError"},
		{&RepositoryPatternMismatchError{URL: "https://gitlab.com/a/b", Pattern: `github\.com/(.*)\.git`}, "RepositoryPatternMismatchError"},
	}
	for _, tt := range tests {
		if got := tt.err.ErrorName(); got != tt.want {
			t.Errorf("ErrorName() = %q, want %q", got, tt.want)
		}
	}
}
