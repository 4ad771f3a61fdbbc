// Package npm provides a registry collector for npmjs.com.
package npm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-logr/logr"

	"github.com/git-pkgs/pkghealth/client"
	"github.com/git-pkgs/pkghealth/internal/core"
)

const (
	DefaultURL = "https://registry.npmjs.org"
	ecosystem  = "npm"
)

func init() {
	core.Register(ecosystem, DefaultURL, func(baseURL string, c *client.Client) core.Registry {
		return New(baseURL, c)
	})
}

type Registry struct {
	baseURL string
	client  *client.Client
	urls    *URLs
}

func New(baseURL string, c *client.Client) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	r := &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  c,
	}
	r.urls = &URLs{}
	return r
}

func (r *Registry) Ecosystem() string {
	return ecosystem
}

func (r *Registry) URLs() client.URLBuilder {
	return r.urls
}

type packageResponse struct {
	ID          string                 `json:"_id"`
	Name        *string                `json:"name"`
	License     interface{}            `json:"license"`
	Repository  interface{}            `json:"repository"`
	Time        map[string]interface{} `json:"time"`
	Maintainers []maintainerInfo       `json:"maintainers"`
	DistTags    map[string]string      `json:"dist-tags"`
}

type maintainerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FetchPackage retrieves the package document. Scoped names keep their @ and
// have the scope separator escaped (@babel%2Fcore), as the registry expects.
func (r *Registry) FetchPackage(ctx context.Context, name string) (*core.PackageMetadata, error) {
	escapedName := url.PathEscape(name)
	url := fmt.Sprintf("%s/%s", r.baseURL, escapedName)

	logr.FromContextOrDiscard(ctx).V(1).Info("fetching package", "ecosystem", ecosystem, "name", name, "url", url)

	var resp packageResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		if client.IsNotFound(err) {
			return nil, &core.PackageNotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	pkg := &core.PackageMetadata{
		Name:       resp.Name,
		License:    extractLicense(resp.License),
		DistTags:   resp.DistTags,
		Time:       extractTimes(resp.Time),
		Repository: extractRepository(resp.Repository),
	}
	if resp.Maintainers != nil {
		pkg.Maintainers = make([]core.Maintainer, len(resp.Maintainers))
		for i, m := range resp.Maintainers {
			pkg.Maintainers[i] = core.Maintainer{Name: m.Name, Email: m.Email}
		}
	}

	return pkg, nil
}

// extractLicense returns the license only when it is declared as a plain
// string; object and array forms are left for the rules to ignore.
func extractLicense(v interface{}) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

// extractTimes keeps the string entries of the time map. Unpublished
// packages carry an object under "unpublished".
func extractTimes(m map[string]interface{}) map[string]string {
	if m == nil {
		return nil
	}
	times := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			times[k] = s
		}
	}
	return times
}

func extractRepository(v interface{}) *core.RepositoryRef {
	switch r := v.(type) {
	case string:
		// Shorthand ("github:user/repo") carries no type.
		return &core.RepositoryRef{URL: r}
	case map[string]interface{}:
		ref := &core.RepositoryRef{}
		ref.Type, _ = r["type"].(string)
		ref.URL, _ = r["url"].(string)
		return ref
	}
	return nil
}

// URLs builds npmjs.com links for a package.
type URLs struct{}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("https://www.npmjs.com/package/%s/v/%s", name, version)
	}
	return fmt.Sprintf("https://www.npmjs.com/package/%s", name)
}

func (u *URLs) Documentation(name, version string) string {
	return u.Registry(name, version) + "#readme"
}

func (u *URLs) PURL(name, version string) string {
	namespace := ""
	pkgName := name
	if strings.HasPrefix(name, "@") && strings.Contains(name, "/") {
		parts := strings.SplitN(name, "/", 2)
		namespace = "%40" + strings.TrimPrefix(parts[0], "@")
		pkgName = parts[1]
	}

	base := "pkg:npm/" + pkgName
	if namespace != "" {
		base = fmt.Sprintf("pkg:npm/%s/%s", namespace, pkgName)
	}
	if version != "" {
		return base + "@" + version
	}
	return base
}
