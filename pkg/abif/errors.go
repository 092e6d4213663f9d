package abif

import "errors"

var (
	ErrInvalidMagic       = errors.New("invalid ABIF magic")
	ErrUnsupportedVersion = errors.New("unsupported ABIF version")
	ErrCorruptFile        = errors.New("corrupt ABIF file")
	ErrDirectoryFull      = errors.New("abif: directory capacity exceeded")
	ErrFinalised          = errors.New("abif: writer already finalised")
	ErrBadTagName         = errors.New("abif: tag name must be 1-4 ASCII bytes")
)
