package audio

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/go-flac/go-flac"
)

// Probe is the outcome of inspecting one audio file.
//
// Exactly one of two things is true: either Err is set and the file must be
// left alone, or Format is a writable container and HasArt tells whether it
// already carries a picture.
type Probe struct {
	Path   string
	Format Format
	HasArt bool

	// Err is the reason the file was skipped. It wraps ErrAudio.
	Err error
}

// Skipped reports whether the file could not be inspected.
func (p Probe) Skipped() bool {
	return p.Err != nil
}

// NeedsArt reports whether a cover should be embedded into the file.
func (p Probe) NeedsArt() bool {
	return p.Err == nil && !p.HasArt
}

// Inspector detects embedded cover art.
//
// Example:
//
//	probe := NewInspector().Inspect("/music/Album/01.mp3")
//	if probe.NeedsArt() {
//	    // embed
//	}
type Inspector struct{}

// NewInspector creates a new Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect sniffs the container of path and checks it for embedded art.
//
// Art is considered present when:
//   - ID3: a tag exists and any frame key starts with APIC or PIC
//   - FLAC: at least one PICTURE metadata block exists
//   - MP4: the ilst mapping exists and contains covr
//
// Parse failures never escape: they are returned in Probe.Err.
func (i *Inspector) Inspect(path string) Probe {
	probe := Probe{Path: path}

	format, err := Sniff(path)
	if err != nil {
		probe.Err = fmt.Errorf("%w: %w (%w)", ErrAudio, ErrUnreadable, err)
		return probe
	}
	probe.Format = format

	switch format {
	case FormatID3:
		probe.HasArt, err = hasID3Art(path)
	case FormatFLAC:
		probe.HasArt, err = hasFLACArt(path)
	case FormatMP4:
		probe.HasArt, err = hasMP4Art(path)
	case FormatUnknown:
		probe.Err = fmt.Errorf("%w: %w", ErrAudio, ErrUnsupportedFormat)
		return probe
	}

	if err != nil {
		probe.Err = fmt.Errorf("%w: %w (%w)", ErrAudio, ErrUnreadable, err)
	}

	return probe
}

func hasID3Art(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if err == tag.ErrNoTagsFound {
			// Bare MPEG stream: no tag, so no picture.
			return false, nil
		}
		return false, err
	}

	// Repeated frames are keyed APIC_0, APIC_1, ... and ID3v2.2 uses PIC.
	for key := range m.Raw() {
		if strings.HasPrefix(key, "APIC") || strings.HasPrefix(key, "PIC") {
			return true, nil
		}
	}

	return false, nil
}

func hasFLACArt(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	meta, err := flac.ParseMetadata(f)
	if err != nil {
		return false, err
	}

	for _, block := range meta.Meta {
		if block.Type == flac.Picture {
			return true, nil
		}
	}

	return false, nil
}

func hasMP4Art(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	m, err := tag.ReadAtoms(f)
	if err != nil {
		return false, err
	}

	raw := m.Raw()
	if raw == nil {
		return false, nil
	}
	_, ok := raw["covr"]

	return ok, nil
}
