package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/git-pkgs/pkghealth/client"
)

// Registry is the interface implemented by package registry collectors.
type Registry interface {
	// Ecosystem returns the source type this registry serves (e.g., "npm").
	Ecosystem() string

	// FetchPackage retrieves the package manifest.
	FetchPackage(ctx context.Context, name string) (*PackageMetadata, error)

	// URLs returns the URL builder for this registry.
	URLs() client.URLBuilder
}

// Factory creates a registry instance for a given base URL.
type Factory func(baseURL string, c *client.Client) Registry

var (
	factories = make(map[string]Factory)
	defaults  = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a registry factory.
// ecosystem is the source type (e.g., "npm").
// defaultURL is the default registry URL for the ecosystem.
func Register(ecosystem string, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[ecosystem] = factory
	defaults[ecosystem] = defaultURL
}

// New creates a new registry for the given ecosystem.
// If baseURL is empty, the default registry URL is used.
func New(ecosystem string, baseURL string, c *client.Client) (Registry, error) {
	mu.RLock()
	factory, ok := factories[ecosystem]
	defaultURL := defaults[ecosystem]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown ecosystem: %s", ecosystem)
	}

	if baseURL == "" {
		baseURL = defaultURL
	}

	if c == nil {
		c = client.DefaultClient()
	}

	return factory(baseURL, c), nil
}

// SupportedEcosystems returns all registered ecosystem types, sorted.
func SupportedEcosystems() []string {
	mu.RLock()
	defer mu.RUnlock()

	ecosystems := make([]string, 0, len(factories))
	for eco := range factories {
		ecosystems = append(ecosystems, eco)
	}
	sort.Strings(ecosystems)
	return ecosystems
}

// DefaultURL returns the default registry URL for an ecosystem.
func DefaultURL(ecosystem string) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[ecosystem]
}
