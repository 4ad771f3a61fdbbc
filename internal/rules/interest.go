package rules

import (
	"fmt"

	"github.com/git-pkgs/pkghealth/internal/core"
)

func evalInterest(rec core.PackageRecord, p Params) []core.Issue {
	if rec.ForksCount == nil || rec.WatchersCount == nil {
		return nil
	}
	cfg := p.Thresholds.Interest
	if *rec.ForksCount >= cfg.MinForks && *rec.WatchersCount >= cfg.MinWatchers {
		return nil
	}
	return []core.Issue{{
		Category: core.CategoryInterest,
		Type:     cfg.Type,
		Message: fmt.Sprintf("It seems that project does not meet minimal interest criteria: "+
			"forks: %d (min. %d), watchers: %d (min. %d)",
			*rec.ForksCount, cfg.MinForks, *rec.WatchersCount, cfg.MinWatchers),
	}}
}
