// Package all imports every registry collector.
//
// Import this package for its side effects to register all sources:
//
//	import (
//		_ "github.com/git-pkgs/pkghealth/all"
//	)
package all

import (
	_ "github.com/git-pkgs/pkghealth/internal/npm"
)
