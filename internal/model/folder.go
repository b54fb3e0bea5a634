package model

import (
	"path/filepath"
)

// Folder represents one directory of the scanned tree.
//
// Folder holds what the processor needs to decide about a directory:
//   - Path of the directory itself
//   - Cover, the image chosen as source for injection
//   - Tracks, the audio files found directly inside it
//
// A Folder without a Cover is never modified and its Tracks are never listed.
//
// Example:
//
//	folder := NewFolder("/music/Artist/Album")
//	folder.Cover = "/music/Artist/Album/cover.jpg"
//	folder.Tracks = append(folder.Tracks, NewAudioFile("/music/Artist/Album/01.mp3"))
type Folder struct {
	// Path is the directory path.
	Path string

	// Cover is the path of the candidate image.
	// Empty string means no candidate was found.
	Cover string

	// Tracks contains the audio files directly inside Path.
	Tracks []*AudioFile
}

// NewFolder creates a Folder for the directory at path.
func NewFolder(path string) *Folder {
	return &Folder{Path: path}
}

// HasCover returns true if a candidate image was found in the folder.
func (f *Folder) HasCover() bool {
	return f.Cover != ""
}

// Name returns the last element of the folder path, used in reports.
func (f *Folder) Name() string {
	return filepath.Base(f.Path)
}

// CoverName returns the file name of the candidate image, or an empty string.
func (f *Folder) CoverName() string {
	if !f.HasCover() {
		return ""
	}
	return filepath.Base(f.Cover)
}
