package rrc

import "errors"

// ErrInvalidInput is returned when a message buffer is malformed: a length
// prefix that runs past the end of the buffer, a choice discriminant with
// no defined arm, or a count field describing more elements than the
// message actually carries.
var ErrInvalidInput = errors.New("rrc: invalid input")

// ErrUnexpectedExtension is returned when a decoder reads an extension
// marker set to 1 for an IE this package does not carry a Rel-9+ extension
// for. The original liblte_rrc.cc logs "FIXME" and presses on; this
// package instead reports it so callers can distinguish "decoded, ignoring
// unknown extension data" from "the base fields are even trustworthy".
var ErrUnexpectedExtension = errors.New("rrc: unexpected extension bit")

// ErrUnsupportedSIB is returned for SIB types the original liblte_rrc.cc
// itself never implemented (SIB5, SIB6, SIB7, SIB9, SIB10, SIB11, SIB12,
// SIB13 — "Not handling sib type" in the source this codec was grounded
// on). The discriminator and length are still valid; only the body is
// opaque.
var ErrUnsupportedSIB = errors.New("rrc: unsupported SIB type")
