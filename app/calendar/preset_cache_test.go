package calendar

import (
	"os"
	"path/filepath"
	"testing"
)

func writePreset(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write preset file: %v", err)
	}
}

func TestPresetCache_Run(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "team", `calendars:
  - url: https://example.com/team.ics
    allowlist:
      - vacation
    blocklist:
      - bob
  - url: https://example.com/company.ics
`)

	cache := NewPresetCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cache.GetPresetCount() != 1 {
		t.Fatalf("Expected 1 preset, got %d", cache.GetPresetCount())
	}

	preset, err := cache.GetPreset("team")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(preset.Calendars) != 2 {
		t.Fatalf("Expected 2 calendars, got %d", len(preset.Calendars))
	}
	if preset.Calendars[0].URL != "https://example.com/team.ics" {
		t.Errorf("Unexpected first URL: %q", preset.Calendars[0].URL)
	}
	if len(preset.Calendars[0].Allowlist) != 1 || preset.Calendars[0].Allowlist[0] != "vacation" {
		t.Errorf("Unexpected allowlist: %v", preset.Calendars[0].Allowlist)
	}

	req := preset.Request()
	if len(req.Calendars) != 2 {
		t.Errorf("Preset request should carry all calendars, got %d", len(req.Calendars))
	}
	if req.Short {
		t.Error("Preset requests always return the document")
	}
}

func TestPresetCache_MissingDirectory(t *testing.T) {
	cache := NewPresetCache("/nonexistent/preset/dir")
	if err := cache.Run(); err != nil {
		t.Errorf("A missing preset directory should not be an error, got %v", err)
	}
	if cache.GetPresetCount() != 0 {
		t.Errorf("Expected 0 presets, got %d", cache.GetPresetCount())
	}
}

func TestPresetCache_UnknownPreset(t *testing.T) {
	cache := NewPresetCache(t.TempDir())
	if _, err := cache.GetPreset("missing"); err == nil {
		t.Error("Expected an error for an unknown preset")
	}
}

func TestPresetCache_InvalidPreset(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "empty", "calendars: []\n")

	cache := NewPresetCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected an error for a preset without calendars")
	}
}

func TestPresetCache_MissingURL(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "nourl", `calendars:
  - allowlist:
      - vacation
`)

	cache := NewPresetCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected an error for a preset calendar without a url")
	}
}
