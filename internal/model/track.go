package model

import (
	"path/filepath"
	"strings"

	"github.com/handiism/artinject/internal/audio"
)

// AudioFile represents a single audio file inside a Folder.
//
// Format starts as the container implied by the extension and is replaced by
// the sniffed container once the file has been inspected.
type AudioFile struct {
	// Path is the full file path.
	Path string

	// Format is the tag container of the file.
	Format audio.Format

	// Title is the tagged title, filled in for playlists only.
	Title string
}

// NewAudioFile creates an AudioFile with the format implied by its extension.
func NewAudioFile(path string) *AudioFile {
	return &AudioFile{
		Path:   path,
		Format: audio.FormatFromExtension(path),
	}
}

// Name returns the file name, used in reports.
func (a *AudioFile) Name() string {
	return filepath.Base(a.Path)
}

// DisplayTitle returns the title, or the file name without extension when
// the file has none.
func (a *AudioFile) DisplayTitle() string {
	if a.Title != "" {
		return a.Title
	}
	name := a.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}
