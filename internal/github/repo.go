package github

import (
	"regexp"

	"github.com/git-pkgs/pkghealth/internal/core"
)

// OwnerRepo extracts the owner/repo identifier from a declared clone URL using
// the first capture group of pattern.
func OwnerRepo(pattern *regexp.Regexp, repoURL string) (string, error) {
	m := pattern.FindStringSubmatch(repoURL)
	if len(m) < 2 || m[1] == "" {
		return "", &core.RepositoryPatternMismatchError{URL: repoURL, Pattern: pattern.String()}
	}
	return m[1], nil
}
