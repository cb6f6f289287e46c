package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Client   *clientConfig
	Viewer   *viewerConfig
	Database *dbConfig
	Events   *eventsConfig
	LogLevel string `envconfig:"PITCH_LOG_LEVEL" default:"info"`
}

type clientConfig struct {
	// APIURL is the analysis service base URL.
	APIURL     string        `envconfig:"PITCH_API_URL" default:"http://localhost:8000"`
	ResultsURL string        `envconfig:"PITCH_RESULTS_URL" default:"http://localhost:3000/results"`
	Timeout    time.Duration `envconfig:"PITCH_TIMEOUT" default:"120s"`
	// Share hands results off by session token instead of the data query parameter.
	Share bool `envconfig:"PITCH_SHARE" default:"false"`
}

type viewerConfig struct {
	Address     string        `envconfig:"PITCH_VIEWER_ADDRESS" default:":3000"`
	BaseURL     string        `envconfig:"PITCH_VIEWER_BASE_URL" default:"http://localhost:3000"`
	CORSOrigins []string      `envconfig:"PITCH_VIEWER_CORS_ORIGINS" default:"http://localhost:3000"`
	ShareTTL    time.Duration `envconfig:"PITCH_VIEWER_SHARE_TTL" default:"168h"`
	// PathPrefix is stripped from request paths when the viewer sits behind a gateway.
	PathPrefix string `envconfig:"PITCH_VIEWER_PATH_PREFIX"`
}

type dbConfig struct {
	Type     string `envconfig:"PITCH_DB_TYPE" default:"sqlite"`
	Path     string `envconfig:"PITCH_DB_PATH" default:"pitch.db"`
	Hostname string `envconfig:"PITCH_DB_HOST" default:"localhost"`
	Port     string `envconfig:"PITCH_DB_PORT" default:"5432"`
	Name     string `envconfig:"PITCH_DB_NAME" default:"pitch"`
	User     string `envconfig:"PITCH_DB_USER" default:"admin"`
	Password string `envconfig:"PITCH_DB_PASS" default:"adminpass"`
}

type eventsConfig struct {
	// Enabled publishes workflow transitions as cloudevents.
	Enabled bool   `envconfig:"PITCH_EVENTS_ENABLED" default:"false"`
	Topic   string `envconfig:"PITCH_EVENTS_TOPIC" default:"pitch.analyzer.workflow"`
	// Sink is a cloudevents HTTP endpoint. Events go to stdout when empty.
	Sink string `envconfig:"PITCH_EVENTS_SINK"`
}

// New returns the process configuration, reading the environment once.
func New() (*Config, error) {
	if singleConfig == nil {
		cfg, err := Load()
		if err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

// Load reads the configuration from the environment without caching it.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
