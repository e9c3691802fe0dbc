package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		if config.Site.Name != "Folio" {
			t.Errorf("Expected site name 'Folio', got %q", config.Site.Name)
		}
		if config.Server.Host != "0.0.0.0" {
			t.Errorf("Expected host '0.0.0.0', got %q", config.Server.Host)
		}
		if config.Server.Port != "3000" {
			t.Errorf("Expected port '3000', got %q", config.Server.Port)
		}
		if config.Theme.Default != SystemTheme {
			t.Errorf("Expected theme 'system-theme', got %q", config.Theme.Default)
		}
		if config.Backend.BaseURL != "http://localhost:5000" {
			t.Errorf("Expected backend base URL 'http://localhost:5000', got %q", config.Backend.BaseURL)
		}
		if config.Backend.Timeout != 10*time.Second {
			t.Errorf("Expected backend timeout 10s, got %v", config.Backend.Timeout)
		}
		if config.Backend.CacheTTL != time.Minute {
			t.Errorf("Expected cache TTL 1m, got %v", config.Backend.CacheTTL)
		}
		if !config.Auth.Enabled {
			t.Error("Expected authentication to be enabled by default")
		}
		expectedProviders := []string{"credentials", "clerk"}
		if !reflect.DeepEqual(config.Auth.Providers, expectedProviders) {
			t.Errorf("Expected providers %v, got %v", expectedProviders, config.Auth.Providers)
		}
		if config.Auth.SessionTTL != 24*time.Hour {
			t.Errorf("Expected session TTL 24h, got %v", config.Auth.SessionTTL)
		}
		if !config.Editor.Autosave {
			t.Error("Expected autosave to be enabled by default")
		}
		if config.Editor.AutosaveInterval != 30*time.Second {
			t.Errorf("Expected autosave interval 30s, got %v", config.Editor.AutosaveInterval)
		}
		if config.Upload.MaxBytes != 5*1024*1024 {
			t.Errorf("Expected upload max bytes 5MiB, got %d", config.Upload.MaxBytes)
		}
		if config.Contact.RatePerMinute != 3 {
			t.Errorf("Expected contact rate 3, got %f", config.Contact.RatePerMinute)
		}
		if config.Contact.Burst != 2 {
			t.Errorf("Expected contact burst 2, got %d", config.Contact.Burst)
		}
		if config.Logging.Level != "info" {
			t.Errorf("Expected logging level 'info', got %q", config.Logging.Level)
		}
	})

	t.Run("Custom struct with various field types", func(t *testing.T) {
		type TestStruct struct {
			StringField   string        `default:"test-string"`
			BoolField     bool          `default:"true"`
			IntField      int           `default:"42"`
			Int64Field    int64         `default:"1024"`
			Float64Field  float64       `default:"3.14"`
			DurationField time.Duration `default:"1m30s"`
			SliceField    []string      `default:"a, b ,c"`
			NoDefault     string
		}

		test := &TestStruct{}
		applyDefaults(test)

		if test.StringField != "test-string" {
			t.Errorf("Expected string field 'test-string', got %q", test.StringField)
		}
		if !test.BoolField {
			t.Error("Expected bool field to be true")
		}
		if test.IntField != 42 {
			t.Errorf("Expected int field 42, got %d", test.IntField)
		}
		if test.Int64Field != 1024 {
			t.Errorf("Expected int64 field 1024, got %d", test.Int64Field)
		}
		if test.Float64Field != 3.14 {
			t.Errorf("Expected float64 field 3.14, got %f", test.Float64Field)
		}
		if test.DurationField != 90*time.Second {
			t.Errorf("Expected duration field 1m30s, got %v", test.DurationField)
		}
		expectedSlice := []string{"a", "b", "c"}
		if !reflect.DeepEqual(test.SliceField, expectedSlice) {
			t.Errorf("Expected slice %v, got %v", expectedSlice, test.SliceField)
		}
		if test.NoDefault != "" {
			t.Errorf("Expected no default field to be empty, got %q", test.NoDefault)
		}
	})

	t.Run("Invalid default values", func(t *testing.T) {
		type InvalidStruct struct {
			BadBool     bool          `default:"not-a-bool"`
			BadInt      int           `default:"not-an-int"`
			BadDuration time.Duration `default:"soon"`
		}

		test := &InvalidStruct{}
		applyDefaults(test)

		if test.BadBool {
			t.Error("Expected invalid bool default to remain false")
		}
		if test.BadInt != 0 {
			t.Errorf("Expected invalid int default to remain 0, got %d", test.BadInt)
		}
		if test.BadDuration != 0 {
			t.Errorf("Expected invalid duration default to remain 0, got %v", test.BadDuration)
		}
	})

	t.Run("Non-struct input", func(t *testing.T) {
		stringVar := "test"
		applyDefaults(&stringVar)
		applyDefaults(stringVar)
		applyDefaults(42)
		applyDefaults(nil)
	})
}

func TestLoadConfig(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	t.Run("Load non-existent config file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		if err := LoadConfig("non-existent-config.yaml"); err != nil {
			t.Errorf("Expected no error for non-existent config file, got %v", err)
		}
		if AppConfig.Site.Name != "Folio" {
			t.Errorf("Expected default site name, got %q", AppConfig.Site.Name)
		}
	})

	t.Run("Load valid config file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		configContent := `
site:
  name: "Jane Doe"
server:
  port: "8080"
backend:
  base_url: "https://api.example.com"
  cache_ttl: 5s
editor:
  autosave: false
`
		path := writeTempConfig(t, configContent)

		if err := LoadConfig(path); err != nil {
			t.Fatalf("Expected no error loading valid config, got %v", err)
		}

		if AppConfig.Site.Name != "Jane Doe" {
			t.Errorf("Expected site name 'Jane Doe', got %q", AppConfig.Site.Name)
		}
		if AppConfig.Server.Port != "8080" {
			t.Errorf("Expected port '8080', got %q", AppConfig.Server.Port)
		}
		if AppConfig.Backend.BaseURL != "https://api.example.com" {
			t.Errorf("Expected backend URL override, got %q", AppConfig.Backend.BaseURL)
		}
		if AppConfig.Backend.CacheTTL != 5*time.Second {
			t.Errorf("Expected cache TTL 5s, got %v", AppConfig.Backend.CacheTTL)
		}
		if AppConfig.Editor.Autosave {
			t.Error("Expected autosave to be disabled")
		}
		// Untouched sections keep their defaults
		if AppConfig.Editor.AutosaveInterval != 30*time.Second {
			t.Errorf("Expected default autosave interval, got %v", AppConfig.Editor.AutosaveInterval)
		}
	})

	t.Run("Load invalid YAML file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		path := writeTempConfig(t, "site: [unclosed")
		if err := LoadConfig(path); err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})

	t.Run("Environment overrides", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		t.Setenv("BACKEND_URL", "http://backend:5000")
		t.Setenv("PORT", "9999")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")

		if err := LoadConfig("non-existent-config.yaml"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if AppConfig.Backend.BaseURL != "http://backend:5000" {
			t.Errorf("Expected BACKEND_URL override, got %q", AppConfig.Backend.BaseURL)
		}
		if AppConfig.Addr() != "0.0.0.0:9999" {
			t.Errorf("Expected addr '0.0.0.0:9999', got %q", AppConfig.Addr())
		}
		if got := AppConfig.Contact.TrustedProxies; len(got) != 2 || got[1] != "192.0.2.1" {
			t.Errorf("Expected two trusted proxies, got %v", got)
		}
	})
}

func TestHasProvider(t *testing.T) {
	cfg := Default()

	if !cfg.HasProvider("credentials") {
		t.Error("Expected credentials provider to be enabled")
	}
	if !cfg.HasProvider("Clerk") {
		t.Error("Expected provider lookup to be case-insensitive")
	}
	if cfg.HasProvider("github") {
		t.Error("Expected github provider to be disabled")
	}

	cfg.Auth.Enabled = false
	if cfg.HasProvider("credentials") {
		t.Error("Expected no providers when auth is disabled")
	}
}

func TestConstants(t *testing.T) {
	t.Run("Callout regex", func(t *testing.T) {
		matches := RegexCallout.FindStringSubmatch(`x := 1 <span class="c1">// &lt;&lt;12&gt;&gt;</span>`)
		if len(matches) != 2 || matches[1] != "12" {
			t.Errorf("Expected callout regex to match '12', got %v", matches)
		}
		if RegexCallout.MatchString("// <<1>>") {
			t.Error("Expected raw markers to be left alone, highlighting escapes them first")
		}
	})

	t.Run("Path constants", func(t *testing.T) {
		if StaticUrlPath != "/static/" {
			t.Errorf("Expected StaticUrlPath '/static/', got %q", StaticUrlPath)
		}
		if TemplateEditor != "editor.html" {
			t.Errorf("Expected TemplateEditor 'editor.html', got %q", TemplateEditor)
		}
	})
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test-config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer tempFile.Close()

	if _, err := tempFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write config content: %v", err)
	}
	return tempFile.Name()
}
