package ioutils

import "errors"

var ErrCantDecodeImage = errors.New("can't decode image")
