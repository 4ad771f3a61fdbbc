package core

import (
	"fmt"

	"github.com/git-pkgs/purl"
)

// PackageRef identifies a package in a source.
type PackageRef struct {
	Source string
	Name   string
}

// ParsePackageRef parses a Package URL such as pkg:npm/%40babel/core@7.24.0.
// The version, if any, is ignored: reports always describe the latest release.
func ParsePackageRef(s string) (PackageRef, error) {
	p, err := purl.Parse(s)
	if err != nil {
		return PackageRef{}, fmt.Errorf("parsing purl %q: %w", s, err)
	}

	name := p.Name
	if p.Namespace != "" {
		// packageurl keeps @ in the npm namespace, so "@babel" + "/" + "core".
		name = p.Namespace + "/" + p.Name
	}
	return PackageRef{Source: p.Type, Name: name}, nil
}
