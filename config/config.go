// Package config defines and loads the application configuration: the set
// of known SPARQL endpoints, trust settings, and resolver cache location.
//
// Auth configuration stores the kind and non-secret parameters only.
// Credentials live in the session credential store and are never written to
// a configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cognizone/skoslens/sanitize"
	"github.com/cognizone/skoslens/sparql"
)

// AuthConfig is the persistable part of an endpoint's authentication: the
// kind and, for apiKey, the header name. No secret fields.
type AuthConfig struct {
	Kind       string `json:"kind" yaml:"kind"`
	HeaderName string `json:"headerName,omitempty" yaml:"headerName,omitempty"`
}

// EndpointConfig describes one SPARQL endpoint.
type EndpointConfig struct {
	ID        string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	URL       string     `json:"url" yaml:"url"`
	Auth      AuthConfig `json:"auth,omitempty" yaml:"auth,omitempty"`
	Languages []string   `json:"languages,omitempty" yaml:"languages,omitempty"`
}

// QueryConfig carries the default retry and timeout settings applied to
// queries when callers pass none.
type QueryConfig struct {
	Retries    int      `json:"retries" yaml:"retries"`
	RetryDelay Duration `json:"retryDelay" yaml:"retryDelay"`
	Timeout    Duration `json:"timeout" yaml:"timeout"`
}

// Config is the complete application configuration.
type Config struct {
	Endpoints    []EndpointConfig `json:"endpoints" yaml:"endpoints"`
	TrustedHosts []string         `json:"trustedHosts,omitempty" yaml:"trustedHosts,omitempty"`
	// DataDir holds the durable prefix cache; ":memory:" keeps it in process.
	DataDir string      `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`
	Query   QueryConfig `json:"query,omitempty" yaml:"query,omitempty"`
	// LookupURL overrides the prefix reverse-lookup service.
	LookupURL string `json:"lookupUrl,omitempty" yaml:"lookupUrl,omitempty"`
}

// Default returns the configuration applied when no file is given.
func Default() *Config {
	return &Config{
		DataDir: ":memory:",
		Query: QueryConfig{
			Retries:    2,
			RetryDelay: Duration(time.Second),
			Timeout:    Duration(30 * time.Second),
		},
	}
}

// Validate checks the configuration for structural problems. Endpoints
// without an ID get a generated one; this is the only mutation.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Endpoints))
	for i := range c.Endpoints {
		ep := &c.Endpoints[i]
		if ep.ID == "" {
			ep.ID = uuid.NewString()
		}
		if seen[ep.ID] {
			return fmt.Errorf("duplicate endpoint id %q", ep.ID)
		}
		seen[ep.ID] = true

		if !sanitize.IsValidEndpointURL(ep.URL) {
			return fmt.Errorf("endpoint %q: invalid URL %q", ep.ID, ep.URL)
		}
		switch sparql.AuthKind(ep.Auth.Kind) {
		case "", sparql.AuthNone, sparql.AuthBasic, sparql.AuthBearer, sparql.AuthAPIKey:
		default:
			return fmt.Errorf("endpoint %q: unknown auth kind %q", ep.ID, ep.Auth.Kind)
		}
	}

	if c.Query.Retries < 0 {
		return fmt.Errorf("query.retries cannot be negative")
	}
	if c.Query.RetryDelay < 0 {
		return fmt.Errorf("query.retryDelay cannot be negative")
	}
	if c.Query.Timeout < 0 {
		return fmt.Errorf("query.timeout cannot be negative")
	}
	return nil
}

// QueryOptions converts the configured query defaults, filling in package
// defaults for zero fields.
func (c *Config) QueryOptions() sparql.QueryOptions {
	opts := sparql.DefaultQueryOptions()
	if c.Query.Retries > 0 {
		opts.Retries = c.Query.Retries
	}
	if c.Query.RetryDelay > 0 {
		opts.RetryDelay = time.Duration(c.Query.RetryDelay)
	}
	if c.Query.Timeout > 0 {
		opts.Timeout = time.Duration(c.Query.Timeout)
	}
	return opts
}

// Endpoint finds an endpoint by ID or name and converts it to the runtime
// representation. Credentials are not populated; callers attach them from
// the session credential store.
func (c *Config) Endpoint(idOrName string) (*sparql.Endpoint, bool) {
	for i := range c.Endpoints {
		ec := &c.Endpoints[i]
		if ec.ID == idOrName || (ec.Name != "" && ec.Name == idOrName) {
			return ec.Runtime(), true
		}
	}
	return nil, false
}

// Runtime converts an endpoint config to its runtime representation.
func (ec *EndpointConfig) Runtime() *sparql.Endpoint {
	kind := sparql.AuthKind(ec.Auth.Kind)
	if kind == "" {
		kind = sparql.AuthNone
	}
	return &sparql.Endpoint{
		ID:  ec.ID,
		URL: ec.URL,
		Auth: sparql.AuthConfig{
			Kind:       kind,
			HeaderName: ec.Auth.HeaderName,
		},
		Languages: append([]string(nil), ec.Languages...),
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// SafeConfig provides thread-safe access to configuration.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a thread-safe config wrapper.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
