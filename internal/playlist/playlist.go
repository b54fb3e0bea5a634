// Package playlist writes extended M3U playlists of a scanned library.
package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/artinject/internal/io"
	"github.com/handiism/artinject/internal/model"
	"golang.org/x/text/unicode/norm"
)

// bom is the UTF-8 byte order mark written at the start of .m3u8 files.
var bom = []byte{0xEF, 0xBB, 0xBF}

// PathMapper rewrites library paths for another device, replacing the
// leading From with To.
//
// Example:
//
//	m := PathMapper{From: "/Volumes/Music", To: "/<microSD0>/Music"}
//	p, ok := m.Map("/Volumes/Music/Artist/01.flac")
//	// "/<microSD0>/Music/Artist/01.flac", true
type PathMapper struct {
	From string
	To   string
}

// Map returns path with From replaced by To. ok is false when path does not
// start with From.
func (m PathMapper) Map(path string) (mapped string, ok bool) {
	rest, ok := strings.CutPrefix(path, m.From)
	if !ok {
		return "", false
	}
	return m.To + rest, true
}

// Exporter generates extended M3U playlists.
//
// Without a mapper the track paths are written as found. With one they are
// rewritten and normalised to NFC, which is what most portable players
// expect from file names created on macOS.
//
// Example:
//
//	exporter := NewExporter(&PathMapper{From: "/Volumes/Music", To: "/sdcard/Music"})
//	err := exporter.Save("/tmp/library.m3u8", tracks)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:-1,Song Title
//	// /sdcard/Music/Artist/Album/01.flac
type Exporter struct {
	mapper *PathMapper
}

// NewExporter creates an Exporter. A nil mapper keeps paths unchanged.
func NewExporter(mapper *PathMapper) *Exporter {
	return &Exporter{mapper: mapper}
}

// CreatePlaylist returns the playlist content with CRLF line endings.
//
// Tracks without a title use their file name. Duration is not known and is
// written as -1.
func (e *Exporter) CreatePlaylist(tracks []*model.AudioFile) string {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\r\n")
	for _, track := range tracks {
		sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s\r\n", track.DisplayTitle()))
		sb.WriteString(e.path(track.Path) + "\r\n")
	}

	return sb.String()
}

// Save writes the playlist to path, creating parent directories. A .m3u8
// file starts with a UTF-8 byte order mark.
func (e *Exporter) Save(path string, tracks []*model.AudioFile) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: %w (%w)", ErrPlaylist, ErrCantWritePlaylist, err)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".m3u8") {
		data = append(data, bom...)
	}
	data = append(data, e.CreatePlaylist(tracks)...)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w (%w)", ErrPlaylist, ErrCantWritePlaylist, err)
	}
	return nil
}

func (e *Exporter) path(path string) string {
	if e.mapper == nil {
		return path
	}
	if mapped, ok := e.mapper.Map(path); ok {
		path = mapped
	}
	return norm.NFC.String(path)
}

// Tracks flattens folders into one track list, in folder order.
func Tracks(folders []*model.Folder) []*model.AudioFile {
	var tracks []*model.AudioFile
	for _, folder := range folders {
		tracks = append(tracks, folder.Tracks...)
	}
	return tracks
}
