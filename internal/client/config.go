package client

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/yaml"
)

const (
	// TestRootDirEnvKey is the environment variable key used to set the file system root when testing.
	TestRootDirEnvKey = "PITCH_TEST_ROOT_DIR"
)

// Config holds the information needed to connect to the analysis service
type Config struct {
	Service Service `json:"service"`

	// baseDir is used to resolve relative paths
	// If baseDir is empty, the current working directory is used.
	baseDir string `json:"-"`
	// TestRootDir is the root directory for test files.
	testRootDir string `json:"-"`
}

// Service contains information how to connect to the analysis service and
// where the results view lives.
type Service struct {
	// Server is the URL of the analysis service (the part before /api/...).
	Server string `json:"server"`
	// Results is the URL of the results view, e.g. http://localhost:3000/results.
	Results string `json:"results,omitempty"`
	// Timeout bounds a single call. Empty means no timeout.
	Timeout string `json:"timeout,omitempty"`
}

func (c *Config) Equal(c2 *Config) bool {
	if c == c2 {
		return true
	}
	if c == nil || c2 == nil {
		return false
	}
	return c.Service.Equal(&c2.Service)
}

func (s *Service) Equal(s2 *Service) bool {
	if s == s2 {
		return true
	}
	if s == nil || s2 == nil {
		return false
	}
	return s.Server == s2.Server && s.Results == s2.Results && s.Timeout == s2.Timeout
}

func (c *Config) SetBaseDir(baseDir string) {
	c.baseDir = baseDir
}

func NewDefault() *Config {
	c := &Config{}

	if value := os.Getenv(TestRootDirEnvKey); value != "" {
		c.testRootDir = filepath.Clean(value)
	}

	return c
}

// NewFromConfig returns a new analysis client from the given config.
func NewFromConfig(config *Config) (*AnalysisClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout, err := config.Service.timeout()
	if err != nil {
		return nil, err
	}

	return NewAnalysisClient(config.Service.Server, WithHTTPClient(NewHTTPClient()), WithTimeout(timeout)), nil
}

// NewHTTPClient returns the HTTP client used to talk to the analysis service.
// The overall call duration is not bounded here; use WithTimeout.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     false,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// DefaultClientConfigPath returns the default path to the client config file.
func DefaultClientConfigPath() string {
	return filepath.Join(homedir.HomeDir(), ".pitchpilot", "client.yaml")
}

func ParseConfigFile(filename string) (*Config, error) {
	config := NewDefault()
	contents, err := os.ReadFile(config.pathFor(filename))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(contents, config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	config.SetBaseDir(filepath.Dir(filename))
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// NewFromConfigFile returns a new analysis client using the config read from the given file.
func NewFromConfigFile(filename string) (*AnalysisClient, error) {
	config, err := ParseConfigFile(filename)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(config)
}

// WriteConfig writes a client config file using the given parameters.
func WriteConfig(filename string, server string, results string) error {
	config := NewDefault()
	config.Service = Service{
		Server:  server,
		Results: results,
	}

	return config.Persist(filename)
}

func (c *Config) Persist(filename string) error {
	contents, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	filename = c.pathFor(filename)
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.WriteFile(filename, contents, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	validationErrors := make([]error, 0)
	validationErrors = append(validationErrors, validateService(c.Service)...)
	if len(validationErrors) > 0 {
		return fmt.Errorf("invalid configuration: %v", utilerrors.NewAggregate(validationErrors).Error())
	}
	return nil
}

func (c *Config) pathFor(filename string) string {
	if c.testRootDir == "" {
		return filename
	}
	return filepath.Join(c.testRootDir, filename)
}

func (s Service) timeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Timeout)
}

func validateService(service Service) []error {
	validationErrors := make([]error, 0)
	validationErrors = append(validationErrors, validateURL("server", service.Server, true)...)
	validationErrors = append(validationErrors, validateURL("results", service.Results, false)...)
	if _, err := service.timeout(); err != nil {
		validationErrors = append(validationErrors, fmt.Errorf("invalid timeout %q: %w", service.Timeout, err))
	}
	return validationErrors
}

func validateURL(name, value string, required bool) []error {
	validationErrors := make([]error, 0)
	if len(value) == 0 {
		if required {
			validationErrors = append(validationErrors, fmt.Errorf("no %s found", name))
		}
		return validationErrors
	}
	u, err := url.Parse(value)
	if err != nil {
		validationErrors = append(validationErrors, fmt.Errorf("invalid %s format %q: %w", name, value, err))
	}
	if err == nil && len(u.Hostname()) == 0 {
		validationErrors = append(validationErrors, fmt.Errorf("invalid %s format %q: no hostname", name, value))
	}
	return validationErrors
}
