package fixer

import "errors"

var (
	ErrFixer = errors.New("fixer")

	ErrRootNotFound     = errors.New("root directory not found")
	ErrRootNotDirectory = errors.New("root is not a directory")
	ErrRootUnreadable   = errors.New("root directory cannot be read")
)
