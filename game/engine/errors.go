package engine

import "errors"

var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidConfig     = errors.New("invalid engine config")
	ErrDesync            = errors.New("grid and entity state out of sync")
)
