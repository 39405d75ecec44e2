// Package config resolves service endpoints per environment. Defaults can
// be overridden with environment variables or functional options.
package config

import (
	"fmt"
	"os"
)

// Environment selects the platform deployment to talk to.
type Environment string

const (
	EnvironmentDev     Environment = "dev"
	EnvironmentStaging Environment = "staging"
	EnvironmentProd    Environment = "prod"
)

// Environment variable names
const (
	EnvRegistryURL   = "AFFINIDI_REGISTRY_URL"
	EnvIssuerURL     = "AFFINIDI_ISSUER_URL"
	EnvVerifierURL   = "AFFINIDI_VERIFIER_URL"
	EnvRevocationURL = "AFFINIDI_REVOCATION_URL"
	EnvAPIKey        = "AFFINIDI_API_KEY"
)

// Config holds the resolved endpoints and API key for one environment.
type Config struct {
	Environment   Environment
	RegistryURL   string
	IssuerURL     string
	VerifierURL   string
	RevocationURL string
	APIKey        string
}

// Option overrides a single Config field.
type Option func(*Config)

func WithRegistryURL(url string) Option   { return func(c *Config) { c.RegistryURL = url } }
func WithIssuerURL(url string) Option     { return func(c *Config) { c.IssuerURL = url } }
func WithVerifierURL(url string) Option   { return func(c *Config) { c.VerifierURL = url } }
func WithRevocationURL(url string) Option { return func(c *Config) { c.RevocationURL = url } }
func WithAPIKey(key string) Option        { return func(c *Config) { c.APIKey = key } }

// New resolves the configuration for env. Precedence is options, then
// environment variables, then built-in defaults.
func New(env Environment, opts ...Option) (*Config, error) {
	suffix, ok := envSuffix(env)
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", env)
	}

	cfg := &Config{
		Environment:   env,
		RegistryURL:   envOr(EnvRegistryURL, fmt.Sprintf("https://affinity-registry%s.apse1.affinidi.com/api/v1", suffix)),
		IssuerURL:     envOr(EnvIssuerURL, fmt.Sprintf("https://affinity-issuer%s.apse1.affinidi.com/api/v1", suffix)),
		VerifierURL:   envOr(EnvVerifierURL, fmt.Sprintf("https://affinity-verifier%s.apse1.affinidi.com/api/v1", suffix)),
		RevocationURL: envOr(EnvRevocationURL, fmt.Sprintf("https://revocation-api%s.apse1.affinidi.com/api/v1", suffix)),
		APIKey:        os.Getenv(EnvAPIKey),
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

func envSuffix(env Environment) (string, bool) {
	switch env {
	case EnvironmentDev:
		return ".dev", true
	case EnvironmentStaging:
		return ".staging", true
	case EnvironmentProd:
		return "", true
	default:
		return "", false
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
