package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// Picture returns the data of the first picture embedded in path.
//
// It returns ErrNoTags when the file has no tag container and ErrNoPicture
// when the tags hold no picture.
func (i *Inspector) Picture(path string) ([]byte, error) {
	m, err := readTags(path)
	if err != nil {
		return nil, err
	}

	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrAudio, ErrNoPicture)
	}

	return pic.Data, nil
}

// Title returns the title tag of path, or an empty string when it has none.
func (i *Inspector) Title(path string) (string, error) {
	m, err := readTags(path)
	if err != nil {
		if errors.Is(err, ErrNoTags) {
			return "", nil
		}
		return "", err
	}

	return m.Title(), nil
}

// readTags reads the tag container of path.
func readTags(path string) (tag.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w (%w)", ErrAudio, ErrUnreadable, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, fmt.Errorf("%w: %w", ErrAudio, ErrNoTags)
		}
		return nil, fmt.Errorf("%w: %w (%w)", ErrAudio, ErrUnreadable, err)
	}

	return m, nil
}
