package watch

import "errors"

var (
	ErrWatch = errors.New("watch")

	ErrCantWatch = errors.New("can't watch directory")
)
