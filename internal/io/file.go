// Package ioutils provides file system utilities for artinject.
//
// This package contains functions for:
//   - Cover candidate lookup
//   - Non-recursive audio file listing
//   - Image reading
//   - Picture fitting and JPEG encoding
//   - Directory creation
package ioutils

import (
	"os"
	"path/filepath"
	"sort"
)

// FindCover returns the path of the first name in names that exists as a
// regular file in dir.
//
// Names are tried in order and matched case-sensitively, so the order of
// names is the priority. An empty string means none exists.
//
// Example:
//
//	cover := FindCover("/music/Album", []string{"folder.jpg", "cover.jpg"})
//	// "/music/Album/cover.jpg" if only cover.jpg is present
func FindCover(dir string, names []string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	// Stat alone would follow case-insensitive file systems; compare the
	// listed names exactly.
	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		present[entry.Name()] = true
	}

	for _, name := range names {
		if !present[name] {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if info, err := os.Stat(fullPath); err == nil && info.Mode().IsRegular() {
			return fullPath
		}
	}

	return ""
}

// ListAudio returns the files directly inside dir whose extension is one of
// exts, matched case-sensitively.
//
// Files are grouped by extension in the order of exts and sorted by name
// within a group, so the result is the same on every run.
//
// Example:
//
//	files, err := ListAudio("/music/Album", []string{".mp3", ".flac", ".m4a"})
//	// [01.mp3 02.mp3 03.flac]
func ListAudio(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]string, len(exts))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		groups[ext] = append(groups[ext], entry.Name())
	}

	var files []string
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if seen[ext] {
			continue
		}
		seen[ext] = true

		names := groups[ext]
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(dir, name))
		}
	}

	return files, nil
}

// ReadImage reads the whole image file at path.
//
// The bytes are returned as stored; no decoding or validation takes place.
func ReadImage(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/var/lib/artinject")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
