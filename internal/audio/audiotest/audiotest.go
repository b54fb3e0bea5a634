// Package audiotest builds small audio files for tests.
//
// The files are not playable. They carry just enough structure for the tag
// readers and writers used by package audio: an MPEG frame header, a FLAC
// STREAMINFO block followed by a frame sync code, or an MP4 atom tree.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/go-flac"
)

// JPEG is a stand-in image payload. Nothing in the code under test decodes it.
var JPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xFF, 0xD9}

// PNG is a stand-in PNG payload.
var PNG = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x00}

// WriteImage writes an image file and returns its path.
func WriteImage(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write image %s: %v", path, err)
	}
	return path
}

// mpegFrames is long enough for readers that look for an ID3v1 trailer.
func mpegFrames() []byte {
	b := make([]byte, 512)
	b[0], b[1], b[2] = 0xFF, 0xFB, 0x90
	return b
}

// WriteMP3 writes a bare MPEG stream. With art, an ID3v2.4 tag holding one
// APIC frame is prepended.
func WriteMP3(t testing.TB, dir, name string, withArt bool) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, mpegFrames(), 0644); err != nil {
		t.Fatalf("write mp3 %s: %v", path, err)
	}

	if withArt {
		tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err != nil {
			t.Fatalf("open mp3 %s: %v", path, err)
		}
		defer tag.Close()

		tag.SetTitle("Existing")
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/png",
			PictureType: id3v2.PTFrontCover,
			Description: "Existing",
			Picture:     PNG,
		})
		if err := tag.Save(); err != nil {
			t.Fatalf("save mp3 %s: %v", path, err)
		}
	}

	return path
}

// WriteMP3WithTitle writes an MP3 whose ID3 tag has a title but no picture.
func WriteMP3WithTitle(t testing.TB, dir, name, title string) string {
	t.Helper()

	path := WriteMP3(t, dir, name, false)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open mp3 %s: %v", path, err)
	}
	defer tag.Close()

	tag.SetTitle(title)
	if err := tag.Save(); err != nil {
		t.Fatalf("save mp3 %s: %v", path, err)
	}

	return path
}

// WriteFLAC writes a FLAC file with a zeroed STREAMINFO block and one fake
// frame. With art, a PICTURE block follows STREAMINFO.
func WriteFLAC(t testing.TB, dir, name string, withArt bool) string {
	t.Helper()

	f := &flac.File{
		Meta: []*flac.MetaDataBlock{
			{Type: flac.StreamInfo, Data: make([]byte, 34)},
		},
		Frames: []byte{0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00, 0x00, 0x00},
	}

	if withArt {
		pic := &flacpicture.MetadataBlockPicture{
			PictureType: flacpicture.PictureTypeFrontCover,
			MIME:        "image/png",
			Description: "Existing",
			ImageData:   PNG,
		}
		block := pic.Marshal()
		f.Meta = append(f.Meta, &block)
	}

	path := filepath.Join(dir, name)
	if err := f.Save(path); err != nil {
		t.Fatalf("write flac %s: %v", path, err)
	}
	return path
}

// Atom encodes one MP4 atom around the concatenated payloads.
func Atom(name string, payloads ...[]byte) []byte {
	size := 8
	for _, p := range payloads {
		size += len(p)
	}

	b := make([]byte, 8, size)
	binary.BigEndian.PutUint32(b[0:4], uint32(size))
	copy(b[4:8], name)
	for _, p := range payloads {
		b = append(b, p...)
	}
	return b
}

// dataAtom encodes an ilst value with the given well-known type class.
func dataAtom(class byte, value []byte) []byte {
	header := []byte{0x00, 0x00, 0x00, class, 0x00, 0x00, 0x00, 0x00}
	return Atom("data", header, value)
}

// WriteM4A writes an MP4 atom tree: ftyp, then moov with one trak holding a
// chunk offset table and udta/meta/hdlr/ilst, then mdat. With art, ilst holds
// a JPEG covr item; otherwise it holds only a title.
func WriteM4A(t testing.TB, dir, name string, withArt bool) string {
	t.Helper()

	ftyp := Atom("ftyp", []byte("M4A "), []byte{0, 0, 0, 0}, []byte("M4A "), []byte("isom"))

	items := [][]byte{Atom("\xa9nam", dataAtom(1, []byte("Existing")))}
	if withArt {
		items = append(items, Atom("covr", dataAtom(13, JPEG)))
	}

	// One chunk; its offset is rewritten when ilst grows.
	stco := Atom("stco", []byte{0, 0, 0, 0}, []byte{0, 0, 0, 1}, []byte{0, 0, 0, 0})
	trak := Atom("trak", Atom("mdia", Atom("minf", Atom("stbl", stco))))

	hdlr := Atom("hdlr", []byte{0, 0, 0, 0}, []byte{0, 0, 0, 0}, []byte("mdir"), []byte("appl"), make([]byte, 9))
	meta := Atom("meta", []byte{0, 0, 0, 0}, hdlr, Atom("ilst", items...))
	moov := Atom("moov", trak, Atom("udta", meta))

	data := append(ftyp, moov...)
	data = append(data, Atom("mdat", make([]byte, 16))...)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write m4a %s: %v", path, err)
	}
	return path
}

// WriteMP3v22 writes an MP3 whose ID3v2.2 tag holds a single PIC frame.
// Writers only produce v2.3 and later, so the tag is encoded by hand.
func WriteMP3v22(t testing.TB, dir, name string) string {
	t.Helper()

	// Encoding, image format, picture type, empty description.
	body := append([]byte{0x00, 'J', 'P', 'G', 0x03, 0x00}, JPEG...)
	frame := append([]byte{'P', 'I', 'C', 0, byte(len(body) >> 8), byte(len(body))}, body...)

	size := len(frame)
	header := []byte{'I', 'D', '3', 0x02, 0x00, 0x00,
		byte(size >> 21 & 0x7F), byte(size >> 14 & 0x7F), byte(size >> 7 & 0x7F), byte(size & 0x7F)}

	data := append(header, frame...)
	data = append(data, mpegFrames()...)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write mp3 %s: %v", path, err)
	}
	return path
}

// EncodePNG returns a decodable PNG of the given size.
func EncodePNG(t testing.TB, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xFF})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteMP3WithPicture writes an MP3 whose ID3 tag holds title and picture.
func WriteMP3WithPicture(t testing.TB, dir, name, title string, picture []byte) string {
	t.Helper()

	path := WriteMP3(t, dir, name, false)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open mp3 %s: %v", path, err)
	}
	defer tag.Close()

	tag.SetTitle(title)
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/png",
		PictureType: id3v2.PTFrontCover,
		Description: "Front",
		Picture:     picture,
	})
	if err := tag.Save(); err != nil {
		t.Fatalf("save mp3 %s: %v", path, err)
	}

	return path
}
