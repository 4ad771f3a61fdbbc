// Package pkghealth computes health reports for npm packages.
//
// A report combines the registry manifest with, when the manifest declares a
// git repository, the GitHub repository metadata and weekly commit activity.
// The merged record is checked against a fixed, ordered list of threshold
// rules.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/git-pkgs/pkghealth"
//	)
//
//	r, err := pkghealth.New(pkghealth.DefaultConfig(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := r.Report(context.Background(), "npm", "react")
//	if err != nil {
//		log.Fatal(pkghealth.ErrorBody(err))
//	}
//	for _, issue := range report.Report {
//		fmt.Println(issue.Type, issue.Message)
//	}
package pkghealth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/go-logr/logr"

	_ "github.com/git-pkgs/pkghealth/all"
	"github.com/git-pkgs/pkghealth/client"
	"github.com/git-pkgs/pkghealth/internal/config"
	"github.com/git-pkgs/pkghealth/internal/core"
	"github.com/git-pkgs/pkghealth/internal/extract"
	"github.com/git-pkgs/pkghealth/internal/github"
	"github.com/git-pkgs/pkghealth/internal/rules"
)

// Re-export types from internal/core
type (
	// Report is the result of a health check.
	Report = core.Report

	// PackageRecord is the normalized view of a package a report is built from.
	PackageRecord = core.PackageRecord

	// Issue is one finding in a report.
	Issue = core.Issue

	// Category names the rule that raised an issue.
	Category = core.Category

	// IssueType is the severity of an issue.
	IssueType = core.IssueType
)

// Re-export configuration
type (
	Config = config.Config
	Rules  = config.Rules
	Source = config.Source
)

// Re-export client
type (
	// Client is the HTTP client used by every collector.
	Client = client.Client

	// ClientOption configures a Client.
	ClientOption = client.Option
)

const (
	Info    = core.Info
	Warning = core.Warning
	Alert   = core.Alert

	StatusOK = core.StatusOK
)

// Re-export errors
var (
	ErrNotFound     = core.ErrNotFound
	ErrUpstreamDown = client.ErrUpstreamDown
)

// Error types
type (
	HTTPError                      = client.HTTPError
	UnsupportedSourceError         = core.UnsupportedSourceError
	PackageNotFoundError           = core.PackageNotFoundError
	RepositoryPatternMismatchError = core.RepositoryPatternMismatchError
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML configuration file over the defaults and applies
// PKGHEALTH_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// SupportedEcosystems returns the registered registry source types, sorted.
func SupportedEcosystems() []string {
	return core.SupportedEcosystems()
}

// NewClient creates a client configured from cfg.HTTP plus any extra options.
func NewClient(cfg *Config, opts ...ClientOption) *Client {
	base := []client.Option{
		client.WithTimeout(cfg.HTTP.Timeout),
		client.WithMaxRetries(cfg.HTTP.MaxRetries),
	}
	if cfg.HTTP.UserAgent != "" {
		base = append(base, client.WithUserAgent(cfg.HTTP.UserAgent))
	}
	if cfg.HTTP.BreakerThreshold > 0 {
		base = append(base, client.WithBreakerThreshold(cfg.HTTP.BreakerThreshold))
	}
	return client.NewClient(append(base, opts...)...)
}

// Request is the inbound shape of a report request. Name is URL-encoded.
type Request struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ErrorResponse is the outbound shape of a failed request.
type ErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ErrorBody classifies err for presentation. Errors without a stable name
// are reported as "Error".
func ErrorBody(err error) ErrorResponse {
	name := "Error"
	var named core.NamedError
	if errors.As(err, &named) {
		name = named.ErrorName()
	}
	return ErrorResponse{Name: name, Message: err.Error()}
}

// Reporter runs the collect, extract and evaluate pipeline.
type Reporter struct {
	cfg        *Config
	registries map[string]core.Registry
	host       *github.Host
	pattern    *regexp.Regexp
	engine     *rules.Engine
	logger     logr.Logger
	now        func() time.Time
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the logger passed to collectors through the request context.
func WithLogger(l logr.Logger) Option {
	return func(r *Reporter) {
		r.logger = l
	}
}

// WithClock sets the time source used for release-age checks.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// New creates a Reporter. A nil cfg uses DefaultConfig; a nil client is
// built from cfg.HTTP. The configuration is validated and must not be
// modified afterwards.
func New(cfg *Config, c *Client, opts ...Option) (*Reporter, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if c == nil {
		c = NewClient(cfg)
	}

	r := &Reporter{
		cfg:        cfg,
		registries: make(map[string]core.Registry),
		logger:     logr.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	pattern, err := cfg.RepositoryRegexp()
	if err != nil {
		return nil, err
	}
	r.pattern = pattern

	host, err := github.New(cfg.Sources[config.SourceGit].URL, c)
	if err != nil {
		return nil, err
	}
	r.host = host

	for name, src := range cfg.Sources {
		if src.Type != config.SourceNPM {
			continue
		}
		reg, err := core.New(src.Type, src.URL, c)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		r.registries[name] = reg
	}

	r.engine = rules.NewEngine(cfg.Rules, rules.WithClock(r.now))
	return r, nil
}

// Handle decodes req.Name and produces the report.
func (r *Reporter) Handle(ctx context.Context, req Request) (*Report, error) {
	name, err := url.PathUnescape(req.Name)
	if err != nil {
		return nil, fmt.Errorf("decoding package name %q: %w", req.Name, err)
	}
	return r.Report(ctx, req.Type, name)
}

// ReportPURL produces the report for a Package URL such as pkg:npm/lodash.
// A version in the PURL is ignored; reports describe the latest release.
func (r *Reporter) ReportPURL(ctx context.Context, purl string) (*Report, error) {
	ref, err := core.ParsePackageRef(purl)
	if err != nil {
		return nil, err
	}
	return r.Report(ctx, ref.Source, ref.Name)
}

// Report produces the report for name in the source called sourceType. Only
// npm-type sources are accepted; anything else fails before any request.
func (r *Reporter) Report(ctx context.Context, sourceType, name string) (*Report, error) {
	reg, ok := r.registries[sourceType]
	if !ok {
		return nil, &core.UnsupportedSourceError{Source: sourceType}
	}

	log := r.logger.WithValues("source", sourceType, "package", name)
	ctx = logr.NewContext(ctx, log)

	pkg, err := reg.FetchPackage(ctx, name)
	if err != nil {
		return nil, err
	}

	var repo *core.RepoMetadata
	if pkg.Repository != nil && pkg.Repository.Type == config.SourceGit {
		ownerRepo, err := github.OwnerRepo(r.pattern, pkg.Repository.URL)
		if err != nil {
			return nil, err
		}
		repo, err = r.host.FetchRepository(ctx, ownerRepo)
		if err != nil {
			return nil, err
		}
	}

	rec := extract.Extract(pkg, repo)
	report := r.engine.CreateReport(rec)
	report.Links = links(reg, name, rec, pkg)

	log.V(1).Info("report created", "issues", len(report.Report))
	return report, nil
}

func links(reg core.Registry, name string, rec core.PackageRecord, pkg *core.PackageMetadata) map[string]string {
	version := ""
	if rec.Version != nil {
		version = *rec.Version
	}
	out := client.BuildURLs(reg.URLs(), name, version)
	if pkg.Repository != nil && pkg.Repository.URL != "" {
		out["repository"] = pkg.Repository.URL
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
