// Package extract normalizes collector output into a core.PackageRecord.
package extract

import (
	"time"

	"github.com/git-pkgs/pkghealth/internal/core"
)

// LatestTag is the dist-tag whose version the record describes.
const LatestTag = "latest"

// Extract merges registry and host metadata into one record. Either input may
// be nil; a nil input contributes no fields. CommitActivity is never nil.
func Extract(npm *core.PackageMetadata, git *core.RepoMetadata) core.PackageRecord {
	rec := FromRegistry(npm)
	host := FromHost(git)

	rec.OpenIssuesCount = host.OpenIssuesCount
	rec.Size = host.Size
	rec.WatchersCount = host.WatchersCount
	rec.StarsCount = host.StarsCount
	rec.ForksCount = host.ForksCount
	rec.SubscribersCount = host.SubscribersCount
	rec.CommitActivity = host.CommitActivity
	if rec.CommitActivity == nil {
		rec.CommitActivity = []int{}
	}

	// The registry's declared license wins over the host's.
	if rec.License == nil {
		rec.License = host.License
	}
	return rec
}

// FromRegistry maps the registry fields of a record.
func FromRegistry(npm *core.PackageMetadata) core.PackageRecord {
	var rec core.PackageRecord
	if npm == nil {
		return rec
	}

	rec.Name = npm.Name
	rec.License = npm.License
	if npm.Maintainers != nil {
		rec.NoOfMaintainers = core.Ptr(len(npm.Maintainers))
	}

	latest, ok := npm.DistTags[LatestTag]
	if !ok || latest == "" {
		return rec
	}
	rec.Version = core.Ptr(latest)

	if raw, ok := npm.Time[latest]; ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			rec.LastReleaseTime = &t
		}
	}
	return rec
}

// FromHost maps the source-control host fields of a record.
func FromHost(git *core.RepoMetadata) core.PackageRecord {
	var rec core.PackageRecord
	if git == nil {
		return rec
	}

	rec.License = git.License
	rec.OpenIssuesCount = git.OpenIssuesCount
	rec.Size = git.Size
	rec.WatchersCount = git.WatchersCount
	rec.StarsCount = git.StargazersCount
	rec.ForksCount = git.ForksCount
	rec.SubscribersCount = git.SubscribersCount

	if len(git.CommitActivity) > 0 {
		rec.CommitActivity = make([]int, len(git.CommitActivity))
		for i, week := range git.CommitActivity {
			if week.Total != nil {
				rec.CommitActivity[i] = *week.Total
			}
		}
	}
	return rec
}
