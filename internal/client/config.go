// Package client talks to the content management API.
//
// Configuration is assembled from three sources. Explicit parameters win,
// then the environment, then the user's ~/.contentfulrc.json. The access
// token follows that order strictly; every other setting from the file is
// merged under the explicit parameters.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Defaults applied by Resolve when no source sets a value.
const (
	DefaultHost          = "api.contentful.com"
	DefaultEnvironmentID = "master"
	DefaultRateLimit     = 7

	// ConfigFileName is the name of the config file in the home directory.
	ConfigFileName = ".contentfulrc.json"
)

// ErrMissingApplication is returned when no source names the application
// using the client.
var ErrMissingApplication = errors.New("please specify the application name that uses this client instance")

// ErrMissingSpace is returned when no source sets the space id.
var ErrMissingSpace = errors.New("please specify the space id to migrate")

// Config holds resolved client settings.
type Config struct {
	AccessToken   string `json:"accessToken,omitempty"`
	Application   string `json:"application,omitempty"`
	Host          string `json:"host,omitempty"`
	SpaceID       string `json:"spaceId,omitempty"`
	EnvironmentID string `json:"environmentId,omitempty"`
	Proxy         string `json:"proxy,omitempty"`
	Insecure      bool   `json:"insecure,omitempty"`
	RateLimit     int    `json:"rateLimit,omitempty"`
}

// FileConfig is the content of the config file. The CLI login stores the
// token as cmaToken.
type FileConfig struct {
	Config
	CMAToken string `json:"cmaToken,omitempty"`
}

// Env holds the environment variables the client reads.
type Env struct {
	AccessToken string `env:"CONTENTFUL_MANAGEMENT_ACCESS_TOKEN"`
	HTTPSProxy  string `env:"HTTPS_PROXY"`
	HTTPSProxyL string `env:"https_proxy"`
}

// Proxy returns the proxy URL from the environment, preferring the upper
// case variable.
func (e Env) Proxy() string {
	if e.HTTPSProxy != "" {
		return e.HTTPSProxy
	}
	return e.HTTPSProxyL
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// DefaultConfigPath returns the path of the config file in the user's home
// directory.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ConfigFileName), nil
}

// LoadFile reads the config file at path. A missing file is an empty config.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileConfig{}, nil
	}
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

// Resolve merges params over e and file. It fails immediately when the
// application name is missing.
func Resolve(params Config, e Env, file FileConfig) (Config, error) {
	cfg := file.Config
	if p := e.Proxy(); p != "" && cfg.Proxy == "" {
		cfg.Proxy = p
	}
	overlay(&cfg, params)

	switch {
	case params.AccessToken != "":
		cfg.AccessToken = params.AccessToken
	case e.AccessToken != "":
		cfg.AccessToken = e.AccessToken
	case file.CMAToken != "":
		cfg.AccessToken = file.CMAToken
	}

	if cfg.Application == "" {
		return Config{}, ErrMissingApplication
	}

	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.EnvironmentID == "" {
		cfg.EnvironmentID = DefaultEnvironmentID
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	return cfg, nil
}

// overlay copies every non-zero field of src onto dst.
func overlay(dst *Config, src Config) {
	if src.AccessToken != "" {
		dst.AccessToken = src.AccessToken
	}
	if src.Application != "" {
		dst.Application = src.Application
	}
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.SpaceID != "" {
		dst.SpaceID = src.SpaceID
	}
	if src.EnvironmentID != "" {
		dst.EnvironmentID = src.EnvironmentID
	}
	if src.Proxy != "" {
		dst.Proxy = src.Proxy
	}
	if src.Insecure {
		dst.Insecure = true
	}
	if src.RateLimit > 0 {
		dst.RateLimit = src.RateLimit
	}
}
