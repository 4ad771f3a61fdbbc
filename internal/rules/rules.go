// Package rules evaluates a core.PackageRecord against the configured
// thresholds and produces the ordered list of issues that make up a report.
package rules

import (
	"slices"
	"time"

	"github.com/git-pkgs/pkghealth/internal/config"
	"github.com/git-pkgs/pkghealth/internal/core"
)

// Rule is a single check over a record. Eval must return nil when the fields
// it needs are absent; missing data is not itself an issue.
type Rule struct {
	Category core.Category
	Summary  string
	Eval     func(rec core.PackageRecord, p Params) []core.Issue
}

// Params is the per-evaluation input shared by every rule.
type Params struct {
	Now        time.Time
	Tier       core.SizeTier
	Thresholds config.Rules
}

// ordered is the fixed evaluation order. Report issues are concatenated in
// this order.
var ordered = []Rule{
	{Category: core.CategoryActivity, Summary: "Recent releases and commit activity over the configured period.", Eval: evalActivity},
	{Category: core.CategoryInterest, Summary: "Forks and watchers above the minimal interest criteria.", Eval: evalInterest},
	{Category: core.CategoryLicense, Summary: "Declared license is in the accepted set.", Eval: evalLicense},
	{Category: core.CategoryMaintainers, Summary: "Enough maintainers to keep the package maintained.", Eval: evalMaintainers},
	{Category: core.CategorySize, Summary: "Package is not suspiciously small.", Eval: evalSize},
	{Category: core.CategoryStars, Summary: "Repository stars above the configured minimum.", Eval: evalStars},
	{Category: core.CategoryVersion, Summary: "Latest version is past the early-development range.", Eval: evalVersion},
	{Category: core.CategoryRepoIssues, Summary: "Open issues within the limit for the package's size tier.", Eval: evalRepoIssues},
}

// All returns every rule in evaluation order.
func All() []Rule {
	return slices.Clone(ordered)
}

// Get returns the rule for a category.
func Get(c core.Category) (Rule, bool) {
	for _, r := range ordered {
		if r.Category == c {
			return r, true
		}
	}
	return Rule{}, false
}

// Engine runs the enabled rules with a fixed threshold table.
type Engine struct {
	thresholds config.Rules
	rules      []Rule
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for release-age checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine for the given thresholds. Rules whose category
// is listed in thresholds.Disabled are skipped; the rest keep their order.
func NewEngine(thresholds config.Rules, opts ...Option) *Engine {
	e := &Engine{
		thresholds: thresholds,
		now:        time.Now,
	}
	for _, r := range ordered {
		if slices.Contains(thresholds.Disabled, r.Category) {
			continue
		}
		e.rules = append(e.rules, r)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the enabled rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return slices.Clone(e.rules)
}

// Evaluate runs every enabled rule and concatenates their issues. The result
// is never nil.
func (e *Engine) Evaluate(rec core.PackageRecord) []core.Issue {
	p := Params{
		Now:        e.now(),
		Tier:       TierOf(rec.Size, e.thresholds.Issues.Sizes),
		Thresholds: e.thresholds,
	}

	issues := []core.Issue{}
	for _, r := range e.rules {
		issues = append(issues, r.Eval(rec, p)...)
	}
	return issues
}

// CreateReport evaluates rec and wraps the issues with the record.
func (e *Engine) CreateReport(rec core.PackageRecord) *core.Report {
	issues := e.Evaluate(rec)
	observe(issues)
	return &core.Report{
		Status:        core.StatusOK,
		ExtractedData: rec,
		Report:        issues,
	}
}
