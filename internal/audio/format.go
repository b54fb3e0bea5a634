package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
)

// Format identifies the tag container of an audio file.
//
// The set is closed: every switch over Format handles all four values.
type Format int

const (
	// FormatUnknown is any container this package does not write to.
	FormatUnknown Format = iota

	// FormatID3 is an MPEG audio stream with (or without) an ID3 tag.
	FormatID3

	// FormatFLAC is a FLAC stream with its metadata blocks.
	FormatFLAC

	// FormatMP4 is an MP4/M4A file with an iTunes-style ilst atom.
	FormatMP4
)

// String returns the short name used in logs and the journal.
func (f Format) String() string {
	switch f {
	case FormatID3:
		return "id3"
	case FormatFLAC:
		return "flac"
	case FormatMP4:
		return "mp4"
	case FormatUnknown:
		return "unknown"
	}
	return "unknown"
}

// FormatFromExtension maps one of the supported file extensions to the
// container it is expected to hold. Matching is case-sensitive.
func FormatFromExtension(name string) Format {
	switch filepath.Ext(name) {
	case ".mp3":
		return FormatID3
	case ".flac":
		return FormatFLAC
	case ".m4a":
		return FormatMP4
	}
	return FormatUnknown
}

// Sniff determines the container of the file at path from its content.
//
// A stream that carries no recognisable tag at all is only accepted when the
// extension says it is an MP3: bare MPEG frames have no magic of their own.
func Sniff(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	return sniffReader(f, FormatFromExtension(path))
}

func sniffReader(r io.ReadSeeker, declared Format) (Format, error) {
	format, fileType, err := tag.Identify(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) && declared == FormatID3 {
			return FormatID3, nil
		}
		return FormatUnknown, err
	}

	switch format {
	case tag.ID3v1, tag.ID3v2_2, tag.ID3v2_3, tag.ID3v2_4:
		return FormatID3, nil
	case tag.MP4:
		return FormatMP4, nil
	case tag.VORBIS:
		if fileType == tag.FLAC {
			return FormatFLAC, nil
		}
	}

	return FormatUnknown, nil
}
