package logging

import "errors"

var ErrBadLevel = errors.New("bad log level")
