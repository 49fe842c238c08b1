package theory

import "errors"

// Construction errors returned by the value algebra.
// Callers match them with errors.Is; wrapped messages carry the offending values.
var (
	ErrInvalidPitch           = errors.New("invalid pitch")
	ErrMidiOutOfRange         = errors.New("midi number out of range")
	ErrUnsupportedChord       = errors.New("unsupported chord")
	ErrUnsupportedVoicing     = errors.New("unsupported voicing")
	ErrTheoryViolation        = errors.New("theory violation")
	ErrInvalidDuration        = errors.New("invalid duration")
	ErrInvalidTupletRatio     = errors.New("invalid tuplet ratio")
	ErrUnsupportedTuplet      = errors.New("unsupported tuplet")
	ErrTupletDurationMismatch = errors.New("tuplet duration mismatch")
	ErrInvalidIntervalDegree  = errors.New("invalid interval degree")
	ErrIntervalParse          = errors.New("interval parse error")
	ErrInvalidIntervalQuality = errors.New("invalid interval quality")
	ErrInvalidScale           = errors.New("invalid scale")
)
