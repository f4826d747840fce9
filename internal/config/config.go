package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"successplan/internal/domain"
)

// Config models successplan.yml.
type Config struct {
	Storage Storage `yaml:"storage"`
	Server  struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Share struct {
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"share"`
	Report struct {
		Preset string `yaml:"preset"`
	} `yaml:"report"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Driver    string `yaml:"driver"`
	Workspace string `yaml:"-"`
	Postgres  struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	S3 struct {
		Bucket          string `yaml:"bucket"`
		Region          string `yaml:"region"`
		Endpoint        string `yaml:"endpoint"`
		Prefix          string `yaml:"prefix"`
		PathStyle       bool   `yaml:"path_style"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
	} `yaml:"s3"`
}

var drivers = map[string]bool{"sqlite": true, "postgres": true, "redis": true, "s3": true, "memory": true}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with sp config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	driver := strings.ToLower(c.Storage.Driver)
	if !drivers[driver] {
		return fmt.Errorf("config.storage.driver %q is not one of sqlite, postgres, redis, s3, memory", c.Storage.Driver)
	}
	switch driver {
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("config.storage.postgres.dsn is required for the postgres driver")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("config.storage.redis.addr is required for the redis driver")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("config.storage.s3.bucket is required for the s3 driver")
		}
	}
	if c.Share.TTL != "" {
		if _, err := time.ParseDuration(c.Share.TTL); err != nil {
			return fmt.Errorf("config.share.ttl: %w", err)
		}
	}
	if c.Report.Preset != "" && !domain.Preset(c.Report.Preset).Valid() {
		return fmt.Errorf("config.report.preset %q is not one of QBR, EBR, Implementation", c.Report.Preset)
	}
	switch c.Log.Mode {
	case "", "development", "production", "nop":
	default:
		return fmt.Errorf("config.log.mode %q is not one of development, production, nop", c.Log.Mode)
	}
	return nil
}

// ShareTTL returns the configured share link lifetime, one week by default.
func (c *Config) ShareTTL() time.Duration {
	if d, err := time.ParseDuration(c.Share.TTL); err == nil && d > 0 {
		return d
	}
	return 7 * 24 * time.Hour
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "successplan.yml")
}

// GenerateDefault returns default config YAML for a storage driver.
func GenerateDefault(driver string) string {
	if driver == "" {
		driver = "sqlite"
	}
	return fmt.Sprintf(defaultTemplate, driver)
}

// LoadOptional returns the defaults if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(GenerateDefault("sqlite"))).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Missing keys keep
// their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `storage:
  driver: %s
  postgres:
    dsn: ""
  redis:
    addr: ""
    db: 0
  s3:
    bucket: ""
    region: us-east-1
    prefix: ""
    path_style: false

server:
  addr: 127.0.0.1:8080
  base_path: /v0

share:
  secret: ""
  ttl: 168h

report:
  preset: QBR

log:
  mode: production
`
