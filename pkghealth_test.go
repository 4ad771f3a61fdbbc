package pkghealth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-pkgs/pkghealth"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// upstream serves a fake npm registry and GitHub API from one server.
type upstream struct {
	manifests    map[string]string
	repoStatus   int
	statsStatus  int
	requests     atomic.Int32
	hostRequests atomic.Int32
	lastPath     atomic.Value
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.requests.Add(1)
	u.lastPath.Store(r.URL.EscapedPath())

	switch r.URL.Path {
	case "/repos/facebook/react":
		u.hostRequests.Add(1)
		w.WriteHeader(orOK(u.repoStatus))
		_, _ = w.Write([]byte(`{"license": {"spdx_id": "Apache-2.0"}, "open_issues_count": 30,
			"size": 345678, "watchers_count": 220000, "stargazers_count": 220000,
			"forks_count": 45000, "subscribers_count": 6600}`))
		return
	case "/repos/facebook/react/stats/commit_activity":
		u.hostRequests.Add(1)
		w.WriteHeader(orOK(u.statsStatus))
		_, _ = w.Write([]byte(`[{"total": 40, "week": 1}, {"total": 30, "week": 2}, {"total": 20, "week": 3}]`))
		return
	}

	body, ok := u.manifests[r.URL.EscapedPath()]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func orOK(code int) int {
	if code == 0 {
		return http.StatusOK
	}
	return code
}

const reactManifest = `{
	"_id": "react",
	"name": "react",
	"license": "MIT",
	"dist-tags": {"latest": "18.3.1"},
	"time": {"18.3.1": "2026-02-20T16:00:00.000Z"},
	"maintainers": [{"name": "fb"}, {"name": "react-bot"}],
	"repository": {"type": "git", "url": "git+https://github.com/facebook/react.git"}
}`

func newReporter(t *testing.T, u *upstream) *pkghealth.Reporter {
	t.Helper()
	server := httptest.NewServer(u)
	t.Cleanup(server.Close)

	cfg := pkghealth.DefaultConfig()
	cfg.Sources["npm"] = pkghealth.Source{Type: "npm", URL: server.URL}
	cfg.Sources["git"] = pkghealth.Source{Type: "git", URL: server.URL}

	r, err := pkghealth.New(cfg, nil, pkghealth.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return r
}

func categories(issues []pkghealth.Issue) []pkghealth.Category {
	out := make([]pkghealth.Category, len(issues))
	for i, is := range issues {
		out[i] = is.Category
	}
	return out
}

func TestReport(t *testing.T) {
	u := &upstream{manifests: map[string]string{"/react": reactManifest}}
	r := newReporter(t, u)

	report, err := r.Report(context.Background(), "npm", "react")
	require.NoError(t, err)

	assert.Equal(t, pkghealth.StatusOK, report.Status)
	rec := report.ExtractedData
	require.NotNil(t, rec.License)
	assert.Equal(t, "MIT", *rec.License, "registry license wins over the host's")
	assert.Equal(t, "18.3.1", *rec.Version)
	assert.Equal(t, 2, *rec.NoOfMaintainers)
	assert.Equal(t, 345678, *rec.Size)
	assert.Equal(t, 220000, *rec.StarsCount)
	assert.Equal(t, []int{40, 30, 20}, rec.CommitActivity)
	assert.Empty(t, report.Report)

	assert.Equal(t, "https://www.npmjs.com/package/react/v/18.3.1", report.Links["registry"])
	assert.Equal(t, "git+https://github.com/facebook/react.git", report.Links["repository"])
	assert.Equal(t, int32(2), u.hostRequests.Load())
}

func TestReportJSONShape(t *testing.T) {
	u := &upstream{manifests: map[string]string{"/react": reactManifest}}
	report, err := newReporter(t, u).Report(context.Background(), "npm", "react")
	require.NoError(t, err)

	b, err := json.Marshal(report)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, []any{}, got["report"])

	data := got["extractedData"].(map[string]any)
	assert.Equal(t, "react", data["name"])
	assert.Equal(t, float64(2), data["noOfMaintainers"])
	assert.Equal(t, float64(30), data["openIssuesCount"])
}

func TestReportRegistryOnly(t *testing.T) {
	u := &upstream{manifests: map[string]string{"/tiny": `{
		"name": "tiny",
		"license": "GPL-3.0",
		"dist-tags": {"latest": "0.1.5"},
		"time": {"0.1.5": "2026-02-28T00:00:00Z"},
		"maintainers": [{"name": "solo"}]
	}`}}
	r := newReporter(t, u)

	report, err := r.Report(context.Background(), "npm", "tiny")
	require.NoError(t, err)

	assert.Equal(t, pkghealth.StatusOK, report.Status)
	assert.Equal(t, []pkghealth.Category{"activity", "license", "maintainers", "version"}, categories(report.Report))
	assert.Contains(t, report.Report[0].Message, "no commit activity data available")
	assert.Zero(t, u.hostRequests.Load())

	b, err := json.Marshal(report.ExtractedData)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"commitActivity":[]`)
	assert.NotContains(t, string(b), "starsCount")
}

func TestReportNonGitRepository(t *testing.T) {
	u := &upstream{manifests: map[string]string{"/svn-pkg": `{
		"name": "svn-pkg",
		"dist-tags": {"latest": "1.0.0"},
		"repository": {"type": "svn", "url": "https://svn.example.com/repo"}
	}`}}
	r := newReporter(t, u)

	_, err := r.Report(context.Background(), "npm", "svn-pkg")
	require.NoError(t, err)
	assert.Zero(t, u.hostRequests.Load())
}

func TestReportStatsStillComputing(t *testing.T) {
	u := &upstream{
		manifests:   map[string]string{"/react": reactManifest},
		statsStatus: http.StatusAccepted,
	}
	report, err := newReporter(t, u).Report(context.Background(), "npm", "react")
	require.NoError(t, err)

	require.Len(t, report.Report, 1)
	assert.Equal(t, pkghealth.Category("activity"), report.Report[0].Category)
	assert.Equal(t, pkghealth.Warning, report.Report[0].Type)
	assert.Empty(t, report.ExtractedData.CommitActivity)
}

func TestReportHostFailure(t *testing.T) {
	u := &upstream{
		manifests:  map[string]string{"/react": reactManifest},
		repoStatus: http.StatusInternalServerError,
	}
	report, err := newReporter(t, u).Report(context.Background(), "npm", "react")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, "Error", pkghealth.ErrorBody(err).Name)
}

func TestReportUnsupportedSource(t *testing.T) {
	u := &upstream{}
	r := newReporter(t, u)

	for _, source := range []string{"pypi", "git", ""} {
		_, err := r.Report(context.Background(), source, "react")
		var unsupported *pkghealth.UnsupportedSourceError
		require.ErrorAs(t, err, &unsupported, "source %q", source)
		assert.Equal(t, "UnsupportedSourceError", pkghealth.ErrorBody(err).Name)
	}
	assert.Zero(t, u.requests.Load(), "unsupported sources must fail before any request")
}

func TestReportPackageNotFound(t *testing.T) {
	r := newReporter(t, &upstream{})

	_, err := r.Report(context.Background(), "npm", "does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkghealth.ErrNotFound))

	body := pkghealth.ErrorBody(err)
	assert.Equal(t, "PackageNotFoundError", body.Name)
	assert.Equal(t, "package not found: [npm]does-not-exist", body.Message)
}

func TestReportRepositoryPatternMismatch(t *testing.T) {
	u := &upstream{manifests: map[string]string{"/gl": `{
		"name": "gl",
		"dist-tags": {"latest": "1.0.0"},
		"repository": {"type": "git", "url": "git+https://gitlab.com/group/gl.git"}
	}`}}

	_, err := newReporter(t, u).Report(context.Background(), "npm", "gl")
	assert.Equal(t, "RepositoryPatternMismatchError", pkghealth.ErrorBody(err).Name)
	assert.Zero(t, u.hostRequests.Load())
}

func TestHandleDecodesScopedName(t *testing.T) {
	u := &upstream{manifests: map[string]string{"/@babel%2Fcore": `{
		"name": "@babel/core",
		"dist-tags": {"latest": "7.24.0"},
		"maintainers": [{"name": "a"}, {"name": "b"}]
	}`}}
	r := newReporter(t, u)

	report, err := r.Handle(context.Background(), pkghealth.Request{Type: "npm", Name: "%40babel%2Fcore"})
	require.NoError(t, err)
	assert.Equal(t, "@babel/core", *report.ExtractedData.Name)
	assert.Equal(t, "/@babel%2Fcore", u.lastPath.Load())
	assert.Equal(t, "pkg:npm/%40babel/core@7.24.0", report.Links["purl"])
}

func TestHandleInvalidEncoding(t *testing.T) {
	r := newReporter(t, &upstream{})
	_, err := r.Handle(context.Background(), pkghealth.Request{Type: "npm", Name: "%zz"})
	assert.Error(t, err)
}

func TestReportPURL(t *testing.T) {
	u := &upstream{manifests: map[string]string{"/react": reactManifest}}
	r := newReporter(t, u)

	report, err := r.ReportPURL(context.Background(), "pkg:npm/react@16.0.0")
	require.NoError(t, err)
	assert.Equal(t, "18.3.1", *report.ExtractedData.Version)

	_, err = r.ReportPURL(context.Background(), "pkg:cargo/serde")
	var unsupported *pkghealth.UnsupportedSourceError
	assert.ErrorAs(t, err, &unsupported)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := pkghealth.DefaultConfig()
	cfg.Rules.Issues.Sizes = []int{100, 10}

	_, err := pkghealth.New(cfg, nil)
	assert.Error(t, err)
}

func TestErrorBody(t *testing.T) {
	body := pkghealth.ErrorBody(errors.New("connection refused"))
	assert.Equal(t, pkghealth.ErrorResponse{Name: "Error", Message: "connection refused"}, body)
}

func TestReporterRecoversAfterUpstreamErrors(t *testing.T) {
	var (
		failing atomic.Bool
		hits    atomic.Int32
	)
	failing.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"name": "left-pad", "dist-tags": {"latest": "1.3.0"}}`))
	}))
	defer server.Close()

	cfg := pkghealth.DefaultConfig()
	cfg.Sources["npm"] = pkghealth.Source{Type: "npm", URL: server.URL}
	r, err := pkghealth.New(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		_, err := r.Report(ctx, "npm", "left-pad")
		require.Error(t, err)
		assert.NotErrorIs(t, err, pkghealth.ErrUpstreamDown)
	}
	assert.Equal(t, int32(6), hits.Load())

	failing.Store(false)
	report, err := r.Report(ctx, "npm", "left-pad")
	require.NoError(t, err, "a recovered upstream must be reached by the next request")
	assert.Equal(t, "1.3.0", *report.ExtractedData.Version)
	assert.Equal(t, int32(7), hits.Load())
}

func TestSupportedEcosystems(t *testing.T) {
	assert.Equal(t, []string{"npm"}, pkghealth.SupportedEcosystems())
}

func TestNewRejectsRepositoryPatternWithoutGroup(t *testing.T) {
	cfg := pkghealth.DefaultConfig()
	cfg.RepositoryPattern = `github\.com/.*\.git`

	_, err := pkghealth.New(cfg, nil)
	assert.ErrorContains(t, err, "capture group")
}
