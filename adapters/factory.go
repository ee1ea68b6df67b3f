package adapters

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Credentials holds platform authentication material. Adapters pick the
// fields they need.
type Credentials struct {
	APIKey      string
	APISecret   string
	BearerToken string
}

// Constructor builds an adapter from credentials.
type Constructor func(creds Credentials) Adapter

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register makes a platform constructor available to New. Later registrations
// for the same name win, so callers can override built-ins.
func Register(platform string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(platform)] = ctor
}

// New resolves a platform name to an adapter instance. Unsupported platforms
// are a configuration error reported immediately, never retried.
func New(platform string, creds Credentials) (Adapter, error) {
	registryMu.RLock()
	ctor, ok := registry[strings.ToLower(platform)]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s (supported: %s)",
			platform, strings.Join(SupportedPlatforms(), ", "))
	}
	return ctor(creds), nil
}

// SupportedPlatforms returns the registered platform names, sorted.
func SupportedPlatforms() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	platforms := make([]string, 0, len(registry))
	for name := range registry {
		platforms = append(platforms, name)
	}
	sort.Strings(platforms)
	return platforms
}
