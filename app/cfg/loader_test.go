package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "/tmp/fical.db",
		Port:              "8080",
		BaseUrl:           "https://cal.example.com",
		FeedsDir:          "./feeds",
		FetchTimeout:      30,
		MaxBodySize:       10485760,
		AllowPrivateHosts: true,
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DBPath != "/tmp/fical.db" {
		t.Errorf("Expected db path '/tmp/fical.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.BaseUrl != "https://cal.example.com" {
		t.Errorf("Expected base URL 'https://cal.example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.FeedsDir != "./feeds" {
		t.Errorf("Expected feeds dir './feeds', got '%s'", cfg.FeedsDir)
	}
	if cfg.FetchTimeout != 30 {
		t.Errorf("Expected fetch timeout 30, got %d", cfg.FetchTimeout)
	}
	if cfg.MaxBodySize != 10485760 {
		t.Errorf("Expected max body size 10485760, got %d", cfg.MaxBodySize)
	}
	if !cfg.AllowPrivateHosts {
		t.Error("Expected private hosts to be allowed")
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}
