package audio

import (
	"fmt"

	mp4tag "github.com/Sorrow446/go-mp4tag"
	"github.com/bogem/id3v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/go-flac"
)

// CoverMIMEType is written for every embedded picture, whatever the source
// file's real image format is.
const CoverMIMEType = "image/jpeg"

// CoverDescription is the description stored with ID3 picture frames.
const CoverDescription = "Cover"

// Tagger embeds front cover art into audio files.
//
// Tagger writes one picture per call and saves the file immediately:
//   - ID3: an APIC frame is appended to the existing tag (created if absent)
//   - FLAC: a PICTURE metadata block is appended
//   - MP4: the covr atom is set to the single given image
//
// Example:
//
//	tagger := NewTagger()
//
//	err := tagger.EmbedCover("/music/Album/01.mp3", FormatID3, jpegBytes)
//	if err != nil {
//	    log.Printf("Failed to embed cover: %v", err)
//	}
type Tagger struct{}

// NewTagger creates a new Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// EmbedCover attaches image as the front cover of the file at path and
// persists the change.
//
// The image bytes are stored untouched and always labelled image/jpeg.
// There is no retry and no rollback: a failed save may leave the file as the
// codec left it.
func (t *Tagger) EmbedCover(path string, format Format, image []byte) (err error) {
	// go-flac indexes into the frame data without a length check.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %w (%v)", ErrAudio, ErrEmbed, r)
		}
	}()

	switch format {
	case FormatID3:
		err = t.embedID3(path, image)
	case FormatFLAC:
		err = t.embedFLAC(path, image)
	case FormatMP4:
		err = t.embedMP4(path, image)
	case FormatUnknown:
		return fmt.Errorf("%w: %w", ErrAudio, ErrUnsupportedFormat)
	}

	if err != nil {
		return fmt.Errorf("%w: %w (%w)", ErrAudio, ErrEmbed, err)
	}

	return nil
}

// embedID3 appends an attached picture frame to the ID3 tag.
func (t *Tagger) embedID3(path string, image []byte) error {
	// Parse: true yields an empty tag when the file has none.
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    CoverMIMEType,
		PictureType: id3v2.PTFrontCover,
		Description: CoverDescription,
		Picture:     image,
	}
	tag.AddAttachedPicture(pic)

	return tag.Save()
}

// embedFLAC appends a PICTURE block after the existing metadata blocks.
func (t *Tagger) embedFLAC(path string, image []byte) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return err
	}

	// Built by hand: flacpicture.NewFromImageData decodes the image and
	// would reject PNG bytes labelled as JPEG.
	pic := &flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureTypeFrontCover,
		MIME:        CoverMIMEType,
		ImageData:   image,
	}
	block := pic.Marshal()
	f.Meta = append(f.Meta, &block)

	return f.Save(path)
}

// embedMP4 replaces the covr atom with a single JPEG picture.
func (t *Tagger) embedMP4(path string, image []byte) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return err
	}
	defer mp4.Close()

	tags := &mp4tag.MP4Tags{
		Pictures: []*mp4tag.MP4Picture{
			{
				Format: mp4tag.ImageTypeJPEG,
				Data:   image,
			},
		},
	}

	return mp4.Write(tags, []string{})
}
