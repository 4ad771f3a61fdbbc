// Package core provides the canonical types, the error taxonomy and the
// collector registry shared by every stage of the report pipeline.
package core

import "time"

// PackageMetadata is the part of a registry manifest the extractor reads.
type PackageMetadata struct {
	Name *string
	// License is set only when the manifest declares it as a non-empty string.
	License  *string
	DistTags map[string]string
	Time     map[string]string
	// Maintainers is nil when the manifest has no maintainers list.
	Maintainers []Maintainer
	Repository  *RepositoryRef
}

// Maintainer represents a package maintainer.
type Maintainer struct {
	Name  string
	Email string
}

// RepositoryRef is the repository descriptor declared in a manifest.
type RepositoryRef struct {
	Type string
	URL  string
}

// RepoMetadata is the source-control host's view of a repository.
type RepoMetadata struct {
	License          *string
	OpenIssuesCount  *int
	Size             *int
	WatchersCount    *int
	StargazersCount  *int
	ForksCount       *int
	SubscribersCount *int
	// CommitActivity is nil when the host has no series yet.
	CommitActivity []WeeklyActivity
}

// WeeklyActivity is one week of the commit-activity series.
type WeeklyActivity struct {
	Week  int64
	Total *int
	Days  []int
}

// PackageRecord is the canonical, normalized view of a package. A nil field
// means the data was not available; zero values are real values.
// CommitActivity is always encoded, as [] when no series is available.
type PackageRecord struct {
	Name             *string    `json:"name,omitempty"`
	License          *string    `json:"license,omitempty"`
	Version          *string    `json:"version,omitempty"`
	NoOfMaintainers  *int       `json:"noOfMaintainers,omitempty"`
	LastReleaseTime  *time.Time `json:"lastReleaseTime,omitempty"`
	OpenIssuesCount  *int       `json:"openIssuesCount,omitempty"`
	Size             *int       `json:"size,omitempty"`
	WatchersCount    *int       `json:"watchersCount,omitempty"`
	StarsCount       *int       `json:"starsCount,omitempty"`
	ForksCount       *int       `json:"forksCount,omitempty"`
	SubscribersCount *int       `json:"subscribersCount,omitempty"`
	CommitActivity   []int      `json:"commitActivity"`
}

// Category names the rule that produced an issue.
type Category string

const (
	CategoryActivity    Category = "activity"
	CategoryInterest    Category = "interest"
	CategoryLicense     Category = "license"
	CategoryMaintainers Category = "maintainers"
	CategorySize        Category = "size"
	CategoryStars       Category = "stars"
	CategoryVersion     Category = "version"
	CategoryRepoIssues  Category = "repoIssues"
)

// IssueType is the severity of an issue.
type IssueType string

const (
	Info    IssueType = "info"
	Warning IssueType = "warning"
	Alert   IssueType = "alert"
)

// Valid reports whether t is one of the known issue types.
func (t IssueType) Valid() bool {
	switch t {
	case Info, Warning, Alert:
		return true
	}
	return false
}

// Issue is one reportable finding.
type Issue struct {
	Category Category  `json:"category"`
	Type     IssueType `json:"type"`
	Message  string    `json:"message"`
}

// StatusOK is the only status a produced report carries.
const StatusOK = "ok"

// Report is the result of evaluating every rule over a record.
type Report struct {
	Status        string            `json:"status"`
	ExtractedData PackageRecord     `json:"extractedData"`
	Report        []Issue           `json:"report"`
	Links         map[string]string `json:"links,omitempty"`
}

// SizeTier classifies a package by its size metric.
type SizeTier string

const (
	TierSmall  SizeTier = "small"
	TierMedium SizeTier = "medium"
	TierBig    SizeTier = "big"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
