package audio

import "errors"

var (
	ErrAudio             = errors.New("audio")
	ErrUnsupportedFormat = errors.New("unsupported container")
	ErrUnreadable        = errors.New("can't parse container")
	ErrEmbed             = errors.New("can't embed cover")
	ErrNoTags            = errors.New("no tags found")
	ErrNoPicture         = errors.New("no embedded picture")
)
