// Package testanalyze is a diagnostic client for the ranking API: it posts a
// sample task file and prints the server's answer, and can generate sample
// files to post.
package testanalyze

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Endpoints the client can call.
const (
	EndpointAnalyze = "analyze"
	EndpointSuggest = "suggest"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Defaults for the command line flags.
const (
	DefaultBaseURL = "http://127.0.0.1:9080"
	DefaultFile    = "sample_tasks.json"
	DefaultTimeout = 10 * time.Second
)

// Errors returned by the client.
var (
	ErrSampleNotFound = errors.New("sample file not found")
	ErrInvalidSample  = errors.New("sample file is not valid JSON")
	ErrInvalidConfig  = errors.New("invalid client config")
	ErrRequest        = errors.New("request failed")
)

// Config holds configuration for one diagnostic run.
type Config struct {
	BaseURL  string        // Base URL of the service
	File     string        // Sample task file to post
	Endpoint string        // analyze or suggest
	Timeout  time.Duration // HTTP request timeout
	Format   string        // json or yaml
	LogFile  string        // Optional log file
	Verbose  bool          // Enable debug logging
}

// Validate checks c and fills defaults for empty fields.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.File == "" {
		c.File = DefaultFile
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.Endpoint = strings.ToLower(strings.TrimSpace(c.Endpoint))
	if c.Endpoint == "" {
		c.Endpoint = EndpointAnalyze
	}
	if c.Endpoint != EndpointAnalyze && c.Endpoint != EndpointSuggest {
		return fmt.Errorf("%w: endpoint must be %q or %q, got %q", ErrInvalidConfig, EndpointAnalyze, EndpointSuggest, c.Endpoint)
	}
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.Format != FormatJSON && c.Format != FormatYAML {
		return fmt.Errorf("%w: format must be %q or %q, got %q", ErrInvalidConfig, FormatJSON, FormatYAML, c.Format)
	}
	return nil
}

// URL is the endpoint address for c.
func (c *Config) URL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/api/tasks/" + c.Endpoint + "/"
}
