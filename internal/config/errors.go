package config

import "errors"

var (
	ErrConfig              = errors.New("configuration")
	ErrCantReadConfigFile  = errors.New("can't read config file")
	ErrCantParseConfigFile = errors.New("can't parse config file")
	ErrBadDuration         = errors.New("bad duration")
)
