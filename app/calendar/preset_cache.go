package calendar

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Preset is a named, file-defined combined request served at a stable
// endpoint, so subscription clients don't have to carry the full
// configuration in the URL.
type Preset struct {
	Name      string `yaml:"-"`
	Calendars []Spec `yaml:"calendars"`
}

// Request returns the combined request a preset expands to.
func (p *Preset) Request() Request {
	return Request{Calendars: p.Calendars}
}

type PresetCache struct {
	feedsDir string
	cache    map[string]*Preset
	mu       sync.RWMutex
}

func NewPresetCache(feedsDir string) *PresetCache {
	return &PresetCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Preset),
	}
}

func (pc *PresetCache) Run() error {
	if _, err := os.Stat(pc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(pc.feedsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive preset name from filename (remove .yml extension)
		fileName := filepath.Base(file)
		presetName := fileName[:len(fileName)-4]

		preset, err := pc.LoadPreset(presetName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Preset loaded", "preset", presetName, "calendars", len(preset.Calendars))
	}

	return nil
}

func (pc *PresetCache) LoadPreset(presetName string) (*Preset, error) {
	presetFile := pc.getPresetFilePath(presetName)
	preset, err := pc.parsePreset(presetFile)
	if err != nil {
		return nil, err
	}

	preset.Name = presetName

	if err := pc.validatePreset(preset); err != nil {
		return nil, fmt.Errorf("invalid preset %s: %w", presetFile, err)
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache[preset.Name] = preset

	return preset, nil
}

func (pc *PresetCache) GetPreset(presetName string) (*Preset, error) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	preset, ok := pc.cache[presetName]
	if !ok {
		return nil, fmt.Errorf("preset with name '%s' not found", presetName)
	}
	return preset, nil
}

func (pc *PresetCache) GetPresetCount() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.cache)
}

func (pc *PresetCache) parsePreset(presetFile string) (*Preset, error) {
	data, err := os.ReadFile(presetFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &preset, nil
}

func (pc *PresetCache) validatePreset(preset *Preset) error {
	if preset == nil {
		return fmt.Errorf("preset is nil")
	}

	if len(preset.Calendars) == 0 {
		return fmt.Errorf("at least one calendar is required")
	}

	for i, spec := range preset.Calendars {
		if spec.URL == "" {
			return fmt.Errorf("calendar %d: url is required", i)
		}
	}

	return nil
}

func (pc *PresetCache) getPresetFilePath(presetName string) string {
	return filepath.Join(pc.feedsDir, presetName+".yml")
}
