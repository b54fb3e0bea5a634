package playlist

import "errors"

var (
	ErrPlaylist          = errors.New("playlist")
	ErrCantWritePlaylist = errors.New("can't write playlist")
)
