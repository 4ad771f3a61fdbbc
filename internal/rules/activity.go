package rules

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/git-pkgs/pkghealth/internal/core"
)

const noActivityMessage = "There is no commit activity data available. " +
	"It is highly probable that it is still being calculated - retry in couple of seconds."

func evalActivity(rec core.PackageRecord, p Params) []core.Issue {
	var out []core.Issue
	cfg := p.Thresholds.Activity

	if rec.LastReleaseTime != nil {
		days := int(p.Now.Sub(*rec.LastReleaseTime).Hours() / 24)
		if days > cfg.MinRelease.Days {
			out = append(out, core.Issue{
				Category: core.CategoryActivity,
				Type:     cfg.MinRelease.Type,
				Message: "Package hasn't been updated recently. Latest release was done: " +
					humanize.RelTime(*rec.LastReleaseTime, p.Now, "ago", "from now"),
			})
		}
	}

	if len(rec.CommitActivity) == 0 {
		return append(out, core.Issue{
			Category: core.CategoryActivity,
			Type:     cfg.Period.Type,
			Message:  noActivityMessage,
		})
	}

	period := cfg.Period.For(p.Tier)
	commits := sumWindow(rec.CommitActivity, period.Weeks-1)
	if commits < period.Min {
		out = append(out, core.Issue{
			Category: core.CategoryActivity,
			Type:     period.Type,
			Message: fmt.Sprintf("Development on the package does not seem to be very active. "+
				"Over past %d weeks there have been %d commits (min. %d)", period.Weeks, commits, period.Min),
		})
	}
	return out
}

// sumWindow sums the first n entries of the series.
func sumWindow(series []int, n int) int {
	n = max(0, min(n, len(series)))
	total := 0
	for _, v := range series[:n] {
		total += v
	}
	return total
}
