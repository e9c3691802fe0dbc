package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/debemdeboas/folio/internal/config"
)

func TestRenderRoundTrips(t *testing.T) {
	out, err := render(config.Default())
	if err != nil {
		t.Fatalf("Expected YAML, got %v", err)
	}
	if !strings.HasPrefix(string(out), "# Folio configuration example") {
		t.Error("Expected the header comment")
	}
	for _, key := range []string{"backend:", "base_url:", "editor:", "autosave_interval:", "contact:", "upload:"} {
		if !strings.Contains(string(out), key) {
			t.Errorf("Expected %q in the generated config", key)
		}
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatal(err)
	}
	previous := config.AppConfig
	t.Cleanup(func() { config.AppConfig = previous })

	if err := config.LoadConfig(path); err != nil {
		t.Fatalf("Expected the generated file to load, got %v", err)
	}
	if config.AppConfig.Backend.Timeout != config.Default().Backend.Timeout {
		t.Errorf("Expected backend timeout %v, got %v", config.Default().Backend.Timeout, config.AppConfig.Backend.Timeout)
	}
}
