package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/git-pkgs/pkghealth/internal/core"
)

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseLeadingFloat reads the longest decimal prefix of s, so "0.1.5" is 0.1.
func parseLeadingFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func evalVersion(rec core.PackageRecord, p Params) []core.Issue {
	if rec.Version == nil {
		return nil
	}
	cfg := p.Thresholds.Version
	v, ok := parseLeadingFloat(*rec.Version)
	if !ok || v >= cfg.Min {
		return nil
	}
	return []core.Issue{{
		Category: core.CategoryVersion,
		Type:     cfg.Type,
		Message:  "Version should be at least: " + strconv.FormatFloat(cfg.Min, 'f', -1, 64) + ". Package is: " + *rec.Version,
	}}
}
