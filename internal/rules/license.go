package rules

import (
	"slices"
	"strings"

	"github.com/git-pkgs/pkghealth/internal/core"
)

var parenStripper = strings.NewReplacer("(", "", ")", "")

// licenseCandidates splits a license expression into its OR alternatives.
func licenseCandidates(expr string) []string {
	parts := strings.Split(parenStripper.Replace(expr), "OR")
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(part, " ", "")
	}
	return parts
}

func evalLicense(rec core.PackageRecord, p Params) []core.Issue {
	if rec.License == nil {
		return nil
	}
	cfg := p.Thresholds.License
	candidates := licenseCandidates(*rec.License)

	if len(candidates) == 1 && slices.Contains(cfg.Alert, candidates[0]) {
		return []core.Issue{{
			Category: core.CategoryLicense,
			Type:     core.Alert,
			Message:  "Single provided license is unacceptable: " + candidates[0],
		}}
	}

	for _, c := range candidates {
		if slices.Contains(cfg.Accepted, c) {
			return nil
		}
	}
	return []core.Issue{{
		Category: core.CategoryLicense,
		Type:     core.Warning,
		Message:  "Provided license(s) should be reviewed if acceptable: " + *rec.License,
	}}
}
