// Package config loads and validates config.yaml.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/gnemet/staffgrid/database/pool"
)

//go:embed schema.json
var schemaJSON string

const DefaultPort = "8080"

var ErrNoDatabase = errors.New("config: no database configured")

type Config struct {
	Application struct {
		Name     string `yaml:"name"`
		Version  string `yaml:"version"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"application"`

	Server struct {
		Port                string `yaml:"port"`
		AuthToken           string `yaml:"auth_token"`
		AllowedEmails       string `yaml:"allowed_emails"`
		AllowedEmailDomains string `yaml:"allowed_email_domains"`
		Metrics             bool   `yaml:"metrics"`
	} `yaml:"server"`

	Database []Database `yaml:"database"`

	Pool Pool `yaml:"pool"`
}

type Database struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Schema   string `yaml:"schema"`
	SSLMode  string `yaml:"sslmode"`
	Default  bool   `yaml:"default"`
}

type Pool struct {
	MaxConnections int    `yaml:"max_connections"`
	IdleTimeout    string `yaml:"idle_timeout"`
	AbsTimeout     string `yaml:"abs_timeout"`
	StatsInterval  string `yaml:"stats_interval"`
}

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "config: invalid document: " + strings.Join(e.Errors, "; ")
}

// Load reads path after loading .env (if any) and expanding ${VAR} references.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional in production

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse validates an already-expanded document and decodes it.
func Parse(data []byte) (*Config, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultPort
	}
	return &cfg, nil
}

// Validate checks a YAML document against the embedded schema.
func Validate(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Errors = append(verr.Errors, desc.String())
	}
	sort.Strings(verr.Errors)
	return verr
}

// DefaultDatabase returns the entry marked default, else the first one.
func (c *Config) DefaultDatabase() (Database, error) {
	if len(c.Database) == 0 {
		return Database{}, ErrNoDatabase
	}
	for _, d := range c.Database {
		if d.Default {
			return d, nil
		}
	}
	return c.Database[0], nil
}

// ConnString renders d as a lib/pq key=value connection string.
func (d Database) ConnString() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts := []string{
		"host=" + quote(d.Host),
		"dbname=" + quote(d.Database),
		"sslmode=" + sslmode,
	}
	if d.Port != "" {
		parts = append(parts, "port="+quote(d.Port))
	}
	if d.User != "" {
		parts = append(parts, "user="+quote(d.User))
	}
	if d.Password != "" {
		parts = append(parts, "password="+quote(d.Password))
	}
	if d.Schema != "" {
		parts = append(parts, "search_path="+quote(d.Schema+",public"))
	}
	return strings.Join(parts, " ")
}

func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Options converts the pool section. Unparsable durations fall back to the pool defaults.
func (p Pool) Options(name string) pool.Options {
	return pool.Options{
		Name:          name,
		MaxConns:      p.MaxConnections,
		IdleTimeout:   duration(p.IdleTimeout),
		AbsTimeout:    duration(p.AbsTimeout),
		StatsInterval: duration(p.StatsInterval),
	}
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// LogLevel maps application.log_level to a slog level; default info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Application.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
