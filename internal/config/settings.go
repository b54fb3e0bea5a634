package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	ioutils "github.com/handiism/artinject/internal/io"
)

// Environment variables read by LoadEnv.
const (
	EnvConfig   = "ARTINJECT_CONFIG"
	EnvLogLevel = "ARTINJECT_LOG_LEVEL"
	EnvJournal  = "ARTINJECT_JOURNAL"

	// EnvLogFile is read by the TUI only, which cannot log to the terminal.
	EnvLogFile = "ARTINJECT_LOG_FILE"
)

// Settings holds all configuration options.
type Settings struct {
	// Folder scanning
	CoverFileNames  []string `json:"cover_file_names" yaml:"cover_file_names"`
	AudioExtensions []string `json:"audio_extensions" yaml:"audio_extensions"`

	// Behaviour
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Journal of injected files, disabled when empty
	JournalPath string `json:"journal_path" yaml:"journal_path"`

	// Watch mode
	Watch         bool     `json:"watch" yaml:"watch"`
	WatchDebounce Duration `json:"watch_debounce" yaml:"watch_debounce"`

	// Folder image extraction
	ExtractFileName string `json:"extract_file_name" yaml:"extract_file_name"`
	ExtractMaxSize  int    `json:"extract_max_size" yaml:"extract_max_size"`
	ExtractQuality  int    `json:"extract_quality" yaml:"extract_quality"`

	// Playlist export: paths starting with PlaylistMapFrom are rewritten
	// to start with PlaylistMapTo
	PlaylistMapFrom string `json:"playlist_map_from" yaml:"playlist_map_from"`
	PlaylistMapTo   string `json:"playlist_map_to" yaml:"playlist_map_to"`
}

// DefaultCoverFileNames lists the accepted cover images in priority order.
func DefaultCoverFileNames() []string {
	return []string{"folder.jpg", "cover.jpg", "album.jpg", "folder.png", "cover.png"}
}

// DefaultAudioExtensions lists the audio file extensions that are scanned.
func DefaultAudioExtensions() []string {
	return []string{".mp3", ".flac", ".m4a"}
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		CoverFileNames:  DefaultCoverFileNames(),
		AudioExtensions: DefaultAudioExtensions(),

		DryRun: false,

		LogLevel: "info",

		JournalPath: "",

		Watch:         false,
		WatchDebounce: Duration(2 * time.Second),

		ExtractFileName: "folder.jpg",
		ExtractMaxSize:  500,
		ExtractQuality:  85,
	}
}

// Load reads settings from a JSON or YAML file.
//
// The format is chosen by extension: .yaml and .yml are YAML, anything else
// is JSON. A missing file yields the defaults. Values in the file override
// the defaults field by field.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("%w: %w (%w)", ErrConfig, ErrCantReadConfigFile, err)
	}

	settings := DefaultSettings()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, settings)
	default:
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w (%w)", ErrConfig, ErrCantParseConfigFile, err)
	}

	settings.normalize()

	return settings, nil
}

// LoadEnv loads a .env file from the working directory if there is one,
// then builds settings from the file named by ARTINJECT_CONFIG (when set)
// and applies the remaining ARTINJECT_* overrides.
//
// An explicit path takes precedence over ARTINJECT_CONFIG.
func LoadEnv(path string) (*Settings, error) {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	settings := DefaultSettings()
	if path != "" {
		var err error
		settings, err = Load(path)
		if err != nil {
			return nil, err
		}
	}

	if level, ok := os.LookupEnv(EnvLogLevel); ok && level != "" {
		settings.LogLevel = level
	}
	if journal, ok := os.LookupEnv(EnvJournal); ok && journal != "" {
		settings.JournalPath = journal
	}

	return settings, nil
}

// Save writes settings to a file, as YAML for .yaml/.yml paths and JSON
// otherwise.
func (s *Settings) Save(path string) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// normalize restores defaults for lists a config file emptied out.
func (s *Settings) normalize() {
	if len(s.CoverFileNames) == 0 {
		s.CoverFileNames = DefaultCoverFileNames()
	}
	if len(s.AudioExtensions) == 0 {
		s.AudioExtensions = DefaultAudioExtensions()
	}
	if s.WatchDebounce <= 0 {
		s.WatchDebounce = Duration(2 * time.Second)
	}
	if s.ExtractFileName == "" {
		s.ExtractFileName = "folder.jpg"
	}
	if s.ExtractMaxSize <= 0 {
		s.ExtractMaxSize = 500
	}
	if s.ExtractQuality < 1 || s.ExtractQuality > 100 {
		s.ExtractQuality = 85
	}
}
