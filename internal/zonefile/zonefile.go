// Package zonefile implements the binary zone-file format: a two-phase
// reader that resolves the origin and serial before touching the record
// section, a single-pass writer, and a shared label pool stored at the
// end of the file with a trailing back-offset.
//
// Unlike the msgpack-based format this design supersedes, the pool here
// is written after the record section rather than before it, so that
// phase one never has to scan past record data to find the labels it
// needs.
package zonefile

import "errors"

// Errors surfaced while reading a zone file. A read failure at either
// phase rejects the load outright; the in-memory zone is left untouched.
var (
	ErrLabelTooLong         = errors.New("zonefile: label exceeds 63 bytes")
	ErrLabelIndexOutOfRange = errors.New("zonefile: label index not present in pool")
	ErrMalformed            = errors.New("zonefile: malformed file trailer")
	ErrUnsupportedType      = errors.New("zonefile: unsupported record type")
)

// backOffsetSize is the width in bytes of the trailing back-offset field.
// This is a plain big-endian uint64, not tagged the way the original
// msgpack-based format tagged its integers (which needed a 1-byte format
// tag ahead of the 8 data bytes, hence that design's "seek to end-9");
// this hand-rolled format has no such tag, so the reader seeks to end-8.
const backOffsetSize = 8
