package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config for the dashboard server and report CLI.
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Data struct {
		Source string `yaml:"source"` // "file" or "postgres"
		File   string `yaml:"file"`
	} `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Log      struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	UI struct {
		TemplateDir string `yaml:"template_dir"`
		AgeBins     int    `yaml:"age_bins"`
	} `yaml:"ui"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Load reads defaults, then the YAML file named by CONFIG_FILE if set,
// then environment overrides.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8080"
	cfg.Data.Source = "file"
	cfg.Data.File = "covid19_data_nettoye.csv"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Database = "covid"
	cfg.Database.SSLMode = "disable"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.UI.TemplateDir = "ui/templates"
	cfg.UI.AgeBins = 30
	return cfg
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	// PORT is kept for platforms that only set a port number.
	if port := os.Getenv("PORT"); port != "" {
		c.HTTP.Addr = ":" + port
	}
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.Data.Source = getEnv("DATA_SOURCE", c.Data.Source)
	c.Data.File = getEnv("DATA_FILE", c.Data.File)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = parseInt(getEnv("DB_PORT", ""), c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("DB_NAME", c.Database.Database)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.UI.TemplateDir = getEnv("TEMPLATE_DIR", c.UI.TemplateDir)
	c.UI.AgeBins = parseInt(getEnv("AGE_BINS", ""), c.UI.AgeBins)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
