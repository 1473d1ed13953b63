package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/saswatsam786/raise.info/internal/apperrors"
)

// SourceConfig describes one salary-disclosure site. URLTemplate must
// contain a {company} placeholder which is filled with the lowercased
// company name.
type SourceConfig struct {
	Name        string `yaml:"name"`
	URLTemplate string `yaml:"url_template"`
	Enabled     bool   `yaml:"enabled"`
}

type LogicConfig struct {
	FetchTimeoutSec  int    `yaml:"fetch_timeout_sec"`
	WriteTimeoutSec  int    `yaml:"write_timeout_sec"`
	FreshnessHours   int    `yaml:"freshness_hours"`
	RespectRobotsTxt bool   `yaml:"respect_robots_txt"`
	DebugDumps       bool   `yaml:"debug_dumps"`
	DebugDir         string `yaml:"debug_dir"`
}

type ScraperConfig struct {
	Logic   LogicConfig    `yaml:"logic"`
	Sources []SourceConfig `yaml:"sources"`

	// Filled from the environment, never from the yaml file.
	MongoURI      string `yaml:"-"`
	MongoDatabase string `yaml:"-"`
	WriteAPIURL   string `yaml:"-"`
}

const defaultWriteAPIURL = "http://localhost:3000"

// Load reads the yaml config (falling back to built-in defaults when the
// file does not exist) and overlays credentials from the environment.
// Missing database credentials are a fatal configuration error.
func Load(path string) (*ScraperConfig, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Config("parsing "+path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, apperrors.Config("reading "+path, err)
	}

	cfg.MongoURI = getEnvString("MONGODB_URI", "")
	cfg.MongoDatabase = getEnvString("MONGODB_DATABASE", "")
	cfg.WriteAPIURL = getEnvString("SALARY_API_URL", defaultWriteAPIURL)
	if getEnvBool("DEBUG_DUMPS", cfg.Logic.DebugDumps) {
		cfg.Logic.DebugDumps = true
	}

	if cfg.MongoURI == "" || cfg.MongoDatabase == "" {
		return nil, apperrors.Config("MONGODB_URI and MONGODB_DATABASE must be set", nil)
	}

	return cfg, nil
}

// Defaults mirrors the source list the scraper has always known about.
func Defaults() *ScraperConfig {
	return &ScraperConfig{
		Logic: LogicConfig{
			FetchTimeoutSec:  30,
			WriteTimeoutSec:  15,
			FreshnessHours:   168,
			RespectRobotsTxt: true,
			DebugDir:         "debug_output",
		},
		Sources: []SourceConfig{
			{
				Name:        "levels_fyi",
				URLTemplate: "https://www.levels.fyi/companies/{company}/salaries/software-engineer/locations/india?country=113",
				Enabled:     true,
			},
			{
				Name:        "weekday",
				URLTemplate: "https://www.weekday.works/salary/what-salary-does-{company}-pay",
				Enabled:     true,
			},
			{
				Name:        "ambitionbox",
				URLTemplate: "https://www.ambitionbox.com/salaries/{company}-salaries",
				Enabled:     true,
			},
		},
	}
}

func (c *ScraperConfig) FetchTimeout() time.Duration {
	return time.Duration(c.Logic.FetchTimeoutSec) * time.Second
}

func (c *ScraperConfig) WriteTimeout() time.Duration {
	return time.Duration(c.Logic.WriteTimeoutSec) * time.Second
}

func (c *ScraperConfig) FreshnessWindow() time.Duration {
	return time.Duration(c.Logic.FreshnessHours) * time.Hour
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
