// Package config loads runtime configuration from the process
// environment, optionally seeded from a .env file.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/contriborg/contribsync/internal/domain"
)

const (
	defaultStoreURL = "https://api.netlify.com"
	defaultAddr     = ":8080"
)

// Config holds everything a run needs. The credentials are pre-issued
// bearer tokens; no auth flow happens here.
type Config struct {
	GitHubToken   string `koanf:"github_token"`
	GitHubOrg     string `koanf:"github_org"`
	NetlifySiteID string `koanf:"netlify_site_id"`
	NetlifyToken  string `koanf:"netlify_token"`
	StoreURL      string `koanf:"store_url"`
	Addr          string `koanf:"addr"`
}

// Load reads GITHUB_TOKEN, GITHUB_ORG, NETLIFY_SITE_ID, NETLIFY_TOKEN and
// the optional STORE_URL and ADDR from the environment. A .env file in
// the working directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is fine; the real environment wins either way.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, err
	}

	cfg := &Config{
		StoreURL: defaultStoreURL,
		Addr:     defaultAddr,
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	required := []struct {
		key   string
		value string
	}{
		{"GITHUB_TOKEN", cfg.GitHubToken},
		{"GITHUB_ORG", cfg.GitHubOrg},
		{"NETLIFY_SITE_ID", cfg.NetlifySiteID},
		{"NETLIFY_TOKEN", cfg.NetlifyToken},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &domain.ConfigError{Key: r.key}
		}
	}
	return cfg, nil
}
