// Package config holds the rule thresholds and source endpoints. A Config is
// loaded once and treated as read-only for the lifetime of the process.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/github/go-spdx/v2/spdxexp"
	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/pkghealth/internal/core"
)

const (
	// SourceNPM is the source type of the npm registry.
	SourceNPM = "npm"
	// SourceGit is the source type of the source-control host.
	SourceGit = "git"

	// DefaultRepositoryPattern isolates owner/repo from a declared clone URL.
	DefaultRepositoryPattern = `github\.com/(.*)\.git`
)

type Config struct {
	Sources           map[string]Source `yaml:"sources"`
	RepositoryPattern string            `yaml:"repository_pattern"`
	Rules             Rules             `yaml:"rules"`
	HTTP              HTTP              `yaml:"http"`
	Logging           Logging           `yaml:"logging"`
}

// Source is a package registry or source-control host endpoint.
type Source struct {
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
}

type HTTP struct {
	Timeout          time.Duration `yaml:"timeout"`
	UserAgent        string        `yaml:"user_agent"`
	MaxRetries       int           `yaml:"max_retries"`
	BreakerThreshold int64         `yaml:"breaker_threshold"` // 0 disables the breaker
}

type Logging struct {
	Format string `yaml:"format"` // "json"|"text"
	Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
}

// Rules is the threshold table every rule reads from.
type Rules struct {
	Disabled    []core.Category `yaml:"disabled"`
	Maintainers Threshold       `yaml:"maintainers"`
	License     License         `yaml:"license"`
	Size        Threshold       `yaml:"size"`
	Version     VersionRule     `yaml:"version"`
	Stars       Threshold       `yaml:"stars"`
	Interest    Interest        `yaml:"interest"`
	Issues      Issues          `yaml:"issues"`
	Activity    Activity        `yaml:"activity"`
}

// Threshold is a lower bound and the type of issue raised below it.
type Threshold struct {
	Min  int            `yaml:"min"`
	Type core.IssueType `yaml:"type"`
}

type VersionRule struct {
	Min  float64        `yaml:"min"`
	Type core.IssueType `yaml:"type"`
}

type License struct {
	Accepted []string `yaml:"accepted"`
	Alert    []string `yaml:"alert"`
}

type Interest struct {
	MinForks    int            `yaml:"min_forks"`
	MinWatchers int            `yaml:"min_watchers"`
	Type        core.IssueType `yaml:"type"`
}

// Issues holds the size-tier breakpoints and the open-issue limit per tier.
type Issues struct {
	Sizes []int      `yaml:"sizes"`
	Open  TierLimits `yaml:"open"`
}

type Limit struct {
	Max  int            `yaml:"max"`
	Type core.IssueType `yaml:"type"`
}

type TierLimits struct {
	Small  Limit `yaml:"small"`
	Medium Limit `yaml:"medium"`
	Big    Limit `yaml:"big"`
}

// For returns the limit configured for tier.
func (t TierLimits) For(tier core.SizeTier) Limit {
	switch tier {
	case core.TierBig:
		return t.Big
	case core.TierMedium:
		return t.Medium
	default:
		return t.Small
	}
}

type Activity struct {
	MinRelease MinRelease `yaml:"min_release"`
	Period     Period     `yaml:"period"`
}

type MinRelease struct {
	Days int            `yaml:"days"`
	Type core.IssueType `yaml:"type"`
}

// Period configures the commit-activity check. Type is used for the issue
// raised when no activity data is available.
type Period struct {
	Type   core.IssueType `yaml:"type"`
	Small  PeriodTier     `yaml:"small"`
	Medium PeriodTier     `yaml:"medium"`
	Big    PeriodTier     `yaml:"big"`
}

type PeriodTier struct {
	Weeks int            `yaml:"weeks"`
	Min   int            `yaml:"min"`
	Type  core.IssueType `yaml:"type"`
}

// For returns the period configured for tier.
func (p Period) For(tier core.SizeTier) PeriodTier {
	switch tier {
	case core.TierBig:
		return p.Big
	case core.TierMedium:
		return p.Medium
	default:
		return p.Small
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sources: map[string]Source{
			SourceNPM: {Type: SourceNPM, URL: "https://registry.npmjs.org"},
			SourceGit: {Type: SourceGit, URL: "https://api.github.com"},
		},
		RepositoryPattern: DefaultRepositoryPattern,
		Rules:             DefaultRules(),
		HTTP: HTTP{
			Timeout:   30 * time.Second,
			UserAgent: "pkghealth",
		},
		Logging: Logging{
			Format: "json",
			Level:  "info",
		},
	}
}

// DefaultRules returns the built-in threshold table.
func DefaultRules() Rules {
	return Rules{
		Maintainers: Threshold{Min: 2, Type: core.Warning},
		License: License{
			Accepted: []string{"MIT", "Apache-2.0", "BSD-2-Clause", "BSD-2-Clause-Patent", "BSD-3-Clause", "WTFPL"},
			Alert:    []string{"UNLICENSED"},
		},
		Size:     Threshold{Min: 38, Type: core.Warning},
		Version:  VersionRule{Min: 0.2, Type: core.Warning},
		Stars:    Threshold{Min: 100, Type: core.Info},
		Interest: Interest{MinForks: 5, MinWatchers: 3, Type: core.Warning},
		Issues: Issues{
			Sizes: []int{250, 72000},
			Open: TierLimits{
				Small:  Limit{Max: 20, Type: core.Warning},
				Medium: Limit{Max: 120, Type: core.Warning},
				Big:    Limit{Max: 380, Type: core.Warning},
			},
		},
		Activity: Activity{
			MinRelease: MinRelease{Days: 90, Type: core.Warning},
			Period: Period{
				Type:   core.Warning,
				Small:  PeriodTier{Weeks: 12, Min: 2, Type: core.Warning},
				Medium: PeriodTier{Weeks: 12, Min: 50, Type: core.Warning},
				Big:    PeriodTier{Weeks: 12, Min: 85, Type: core.Warning},
			},
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		c.fillSources()
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// fillSources restores defaults for source fields a partial YAML map left empty.
func (c *Config) fillSources() {
	if c.Sources == nil {
		c.Sources = map[string]Source{}
	}
	for name, def := range Default().Sources {
		s, ok := c.Sources[name]
		if !ok {
			c.Sources[name] = def
			continue
		}
		if s.Type == "" {
			s.Type = def.Type
		}
		if s.URL == "" {
			s.URL = def.URL
		}
		c.Sources[name] = s
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PKGHEALTH_NPM_URL"); v != "" {
		c.setSourceURL(SourceNPM, v)
	}
	if v := os.Getenv("PKGHEALTH_GIT_URL"); v != "" {
		c.setSourceURL(SourceGit, v)
	}
	if v := os.Getenv("PKGHEALTH_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("PKGHEALTH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PKGHEALTH_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PKGHEALTH_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}
	return nil
}

func (c *Config) setSourceURL(name, url string) {
	s := c.Sources[name]
	if s.Type == "" {
		s.Type = name
	}
	s.URL = url
	c.Sources[name] = s
}

// RepositoryRegexp compiles the repository pattern.
func (c *Config) RepositoryRegexp() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.RepositoryPattern)
	if err != nil {
		return nil, fmt.Errorf("repository pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("repository pattern %q must have exactly one capture group", c.RepositoryPattern)
	}
	return re, nil
}

// Validate checks the configuration for values no rule can work with.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := c.Sources[SourceGit]; !ok {
		errs = append(errs, fmt.Errorf("sources: missing %q source", SourceGit))
	}
	if _, err := c.RepositoryRegexp(); err != nil {
		errs = append(errs, err)
	}

	r := c.Rules
	if len(r.Issues.Sizes) != 2 || r.Issues.Sizes[0] >= r.Issues.Sizes[1] {
		errs = append(errs, fmt.Errorf("rules.issues.sizes must be two ascending breakpoints, got %v", r.Issues.Sizes))
	}
	for _, tier := range []core.SizeTier{core.TierSmall, core.TierMedium, core.TierBig} {
		if p := r.Activity.Period.For(tier); p.Weeks < 1 {
			errs = append(errs, fmt.Errorf("rules.activity.period.%s.weeks must be at least 1", tier))
		}
	}
	if len(r.License.Accepted) > 0 {
		if ok, invalid := spdxexp.ValidateLicenses(r.License.Accepted); !ok {
			errs = append(errs, fmt.Errorf("rules.license.accepted: invalid SPDX identifiers %v", invalid))
		}
	}

	types := map[string]core.IssueType{
		"maintainers":            r.Maintainers.Type,
		"size":                   r.Size.Type,
		"version":                r.Version.Type,
		"stars":                  r.Stars.Type,
		"interest":               r.Interest.Type,
		"issues.open.small":      r.Issues.Open.Small.Type,
		"issues.open.medium":     r.Issues.Open.Medium.Type,
		"issues.open.big":        r.Issues.Open.Big.Type,
		"activity.min_release":   r.Activity.MinRelease.Type,
		"activity.period":        r.Activity.Period.Type,
		"activity.period.small":  r.Activity.Period.Small.Type,
		"activity.period.medium": r.Activity.Period.Medium.Type,
		"activity.period.big":    r.Activity.Period.Big.Type,
	}
	for field, t := range types {
		if !t.Valid() {
			errs = append(errs, fmt.Errorf("rules.%s.type: unknown issue type %q", field, t))
		}
	}

	return errors.Join(errs...)
}
