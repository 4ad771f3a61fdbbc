package rules

import (
	"fmt"

	"github.com/git-pkgs/pkghealth/internal/core"
)

func evalMaintainers(rec core.PackageRecord, p Params) []core.Issue {
	cfg := p.Thresholds.Maintainers
	if rec.NoOfMaintainers == nil || *rec.NoOfMaintainers >= cfg.Min {
		return nil
	}
	return []core.Issue{{
		Category: core.CategoryMaintainers,
		Type:     cfg.Type,
		Message: fmt.Sprintf("There should be at least %d maintainers to make sure that package "+
			"is actively maintained. There are only: %d at the moment", cfg.Min, *rec.NoOfMaintainers),
	}}
}

func evalSize(rec core.PackageRecord, p Params) []core.Issue {
	cfg := p.Thresholds.Size
	if rec.Size == nil || *rec.Size >= cfg.Min {
		return nil
	}
	return []core.Issue{{
		Category: core.CategorySize,
		Type:     cfg.Type,
		Message: fmt.Sprintf("It seems that the package is pretty small, verify if you really want "+
			"to use such small package. Package is: %d (min. is: %d)", *rec.Size, cfg.Min),
	}}
}

func evalStars(rec core.PackageRecord, p Params) []core.Issue {
	cfg := p.Thresholds.Stars
	if rec.StarsCount == nil || *rec.StarsCount >= cfg.Min {
		return nil
	}
	return []core.Issue{{
		Category: core.CategoryStars,
		Type:     cfg.Type,
		Message:  fmt.Sprintf("Number of stars for project is: %d (min. is set to: %d)", *rec.StarsCount, cfg.Min),
	}}
}

func evalRepoIssues(rec core.PackageRecord, p Params) []core.Issue {
	if rec.Size == nil || rec.OpenIssuesCount == nil {
		return nil
	}
	limit := p.Thresholds.Issues.Open.For(p.Tier)
	if *rec.OpenIssuesCount <= limit.Max {
		return nil
	}
	return []core.Issue{{
		Category: core.CategoryRepoIssues,
		Type:     limit.Type,
		Message: fmt.Sprintf("There seems to be a lot of issues open for the package: %d (max. %d). "+
			"Make sure that the package is in good shape before using it "+
			"(issues count will be higher in large packages).", *rec.OpenIssuesCount, limit.Max),
	}}
}
