package journal

import "errors"

var (
	ErrJournal = errors.New("journal")
	ErrOpen    = errors.New("can't open journal")
	ErrWrite   = errors.New("can't write journal entry")
	ErrRead    = errors.New("can't read journal")
)
