package model

import "errors"

var (
	// ErrConfiguration reports a strip, buffer or fade set up with values
	// the hardware cannot honor. It is fatal; the caller must fix the config.
	ErrConfiguration = errors.New("configuration error")
	// ErrHardware reports an output peripheral that is missing or failed.
	ErrHardware = errors.New("hardware error")
	// ErrIndexOutOfRange reports a pixel index outside [0, N).
	ErrIndexOutOfRange = errors.New("index out of range")
)
