package client

// URLBuilder constructs the human-facing links attached to a report.
type URLBuilder interface {
	Registry(name, version string) string
	Documentation(name, version string) string
	PURL(name, version string) string
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "docs", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Registry(name, version); v != "" {
		result["registry"] = v
	}
	if v := urls.Documentation(name, version); v != "" {
		result["docs"] = v
	}
	if v := urls.PURL(name, version); v != "" {
		result["purl"] = v
	}
	return result
}
