package rules

import "github.com/git-pkgs/pkghealth/internal/core"

// TierOf classifies size against two ascending breakpoints. A size equal to
// a breakpoint belongs to the lower tier. A missing size is small.
func TierOf(size *int, breakpoints []int) core.SizeTier {
	if size == nil || len(breakpoints) < 2 {
		return core.TierSmall
	}
	switch {
	case *size > breakpoints[1]:
		return core.TierBig
	case *size > breakpoints[0]:
		return core.TierMedium
	default:
		return core.TierSmall
	}
}
