package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	Theme   ThemeConfig   `yaml:"theme"`
	Render  RenderConfig  `yaml:"render"`
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Editor  EditorConfig  `yaml:"editor"`
	Upload  UploadConfig  `yaml:"upload"`
	Contact ContactConfig `yaml:"contact"`
	Meta    MetaConfig    `yaml:"meta"`
	Social  SocialConfig  `yaml:"social"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects the log level and output: "console" for humans or
// "json" for log collectors.
type LoggingConfig struct {
	Level    string `yaml:"level" default:"info"`
	Format   string `yaml:"format" default:"console"`
	Requests bool   `yaml:"requests" default:"true"`
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"Folio"`
	URL         string `yaml:"url" default:"http://localhost:3000"`
	Owner       string `yaml:"owner" default:""`
	Description string `yaml:"description" default:"Projects, skills and writing"`
	Tagline     string `yaml:"tagline" default:"Full stack developer"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"3000"`
}

type ThemeConfig struct {
	Default            string       `yaml:"default" default:"system-theme"`
	AllowSwitching     bool         `yaml:"allow_switching" default:"true"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" default:"catppuccin-latte"`
}

// RenderConfig picks the Markdown dialect used for blog content:
// "classic" (CommonMark plus extensions) or "mmark".
type RenderConfig struct {
	Markdown string `yaml:"markdown" default:"classic"`
}

// BackendConfig points at the REST API that owns every record.
type BackendConfig struct {
	BaseURL  string        `yaml:"base_url" default:"http://localhost:5000"`
	Timeout  time.Duration `yaml:"timeout" default:"10s"`
	CacheTTL time.Duration `yaml:"cache_ttl" default:"60s"`
}

type AuthConfig struct {
	Enabled    bool          `yaml:"enabled" default:"true"`
	Providers  []string      `yaml:"providers" default:"credentials,clerk"`
	CookieName string        `yaml:"cookie_name" default:"folio_session"`
	SessionTTL time.Duration `yaml:"session_ttl" default:"24h"`
	Issuer     string        `yaml:"issuer" default:"folio"`
}

type EditorConfig struct {
	Autosave         bool          `yaml:"autosave" default:"true"`
	AutosaveInterval time.Duration `yaml:"autosave_interval" default:"30s"`
	DatabasePath     string        `yaml:"database_path" default:"./folio.db"`
	Compression      string        `yaml:"compression" default:"zstd"`
	SessionTTL       time.Duration `yaml:"session_ttl" default:"12h"`
}

type UploadConfig struct {
	Bucket        string `yaml:"bucket" default:"portfolio"`
	Region        string `yaml:"region" default:"auto"`
	Endpoint      string `yaml:"endpoint" default:""`
	PublicBaseURL string `yaml:"public_base_url" default:""`
	MaxBytes      int64  `yaml:"max_bytes" default:"5242880"`
}

// ContactConfig limits contact form submissions per client. X-Forwarded-For
// is only read from peers listed in TrustedProxies (addresses or CIDRs).
type ContactConfig struct {
	RatePerMinute  float64  `yaml:"rate_per_minute" default:"3"`
	Burst          int      `yaml:"burst" default:"2"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type MetaConfig struct {
	Author   string   `yaml:"author" default:""`
	Keywords []string `yaml:"keywords" default:"portfolio,blog,projects"`
	Favicon  string   `yaml:"favicon" default:"/static/favicon.ico"`
}

type SocialConfig struct {
	GitHub   string `yaml:"github" default:""`
	Twitter  string `yaml:"twitter" default:""`
	LinkedIn string `yaml:"linkedin" default:""`
	Email    string `yaml:"email" default:""`
}

var AppConfig = Default()

// Default returns a configuration with every default tag applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func LoadConfig(path string) error {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(config)

	AppConfig = config
	return nil
}

// applyEnv lets deployment environments override the settings that usually
// differ between hosts without shipping a config file.
func applyEnv(config *Config) {
	if v := os.Getenv("SITE_URL"); v != "" {
		config.Site.URL = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		config.Backend.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		config.Server.Port = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.Upload.Bucket = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		config.Upload.Endpoint = v
	}
	if v := os.Getenv("S3_PUBLIC_BASE_URL"); v != "" {
		config.Upload.PublicBaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		config.Contact.TrustedProxies = strings.Split(v, ",")
	}
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}

// Addr returns the host:port pair the HTTP server listens on.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// HasProvider reports whether the named auth provider is enabled.
func (c *Config) HasProvider(name string) bool {
	if !c.Auth.Enabled {
		return false
	}
	for _, p := range c.Auth.Providers {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
