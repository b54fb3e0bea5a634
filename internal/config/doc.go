// Package config provides configuration management for artinject.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - .env and ARTINJECT_* environment overrides
//
// # Default Settings
//
// Use DefaultSettings() to get the defaults:
//
//	settings := config.DefaultSettings()
//	// Cover names: folder.jpg, cover.jpg, album.jpg, folder.png, cover.png
//	// Extensions: .mp3, .flac, .m4a
//	// Journal disabled, watch mode off
//
// # Loading from File
//
//	settings, err := config.Load("/etc/artinject.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Environment
//
// LoadEnv reads a .env file when present and honours:
//   - ARTINJECT_CONFIG: settings file path
//   - ARTINJECT_LOG_LEVEL: logrus level name
//   - ARTINJECT_JOURNAL: SQLite journal path
package config
