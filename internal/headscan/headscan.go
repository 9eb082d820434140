// Package headscan implements the request head scanner: the sentinel-trick
// byte scan that carves a request line and its headers out of a post-padded
// buffer without any inner-loop bounds check.
//
// Grounded on original_source/src/HttpParser.h's getHeaders/find_cr, with
// the manual pointer arithmetic translated into slice indexing and the
// eight-byte masked CR search dropped in favor of a plain forward scan
// (Go's bounds-checked slices make porting the raw SIMD-ish trick both
// unsafe and pointless; the sentinel byte itself is kept, since it's what
// turns every CR search into an unconditional scan instead of a
// length-checked one).
package headscan

import (
	"bytes"
	"errors"

	"github.com/httpcore-go/httpcore/internal/limits"
	"github.com/httpcore-go/httpcore/internal/proxyproto"
	"github.com/httpcore-go/httpcore/request"
)

// ErrMalformed is returned when a CR is found inside the real (not
// sentinel) data and isn't followed by LF. Unlike a plain "incomplete"
// result, this is unambiguous: no amount of additional data fixes a CR
// that's already followed by a known, wrong byte.
var ErrMalformed = errors.New("malformed request head")

// ErrTooManyHeaders is returned when MaxHeaders slots are exhausted without
// reaching the terminal blank line. This, too, is unambiguous regardless of
// how much more data might arrive later.
var ErrTooManyHeaders = errors.New("too many headers")

// Scan carves a complete request head out of data[:length]. data must have
// at least length+2 bytes of backing length, with the caller having already
// written the sentinel pair data[length], data[length+1] = '\r', 'a'.
//
// It returns the number of bytes consumed (at least 4), counting any PROXY
// preamble bytes the proxyproto parser claimed, on success, leaving
// req populated. On failure it returns 0 and either a nil error, meaning
// the head is merely incomplete (the caller should wait for more bytes), or
// ErrMalformed/ErrTooManyHeaders, meaning the head is irrecoverably broken
// regardless of how much more data arrives.
func Scan(data []byte, length int, req *request.Request, pp proxyproto.Parser, reserved any) (consumed int, err error) {
	pos := 0
	if pp != nil {
		done, n := pp.Parse(data[:length], reserved)
		if !done {
			return 0, nil
		}
		pos = n
	}

	for slotIdx := 0; slotIdx < limits.MaxHeaders; slotIdx++ {
		keyStart := pos
		for data[pos] != ':' && data[pos] > 0x20 {
			data[pos] |= 0x20
			pos++
		}
		key := data[keyStart:pos]

		if data[pos] == ':' && data[pos+1] == ' ' {
			pos += 2
		} else {
			for (data[pos] == ':' || data[pos] <= 0x20) && data[pos] != '\r' {
				pos++
			}
		}

		valueStart := pos
		for data[pos] != '\r' {
			pos++
		}

		// data[pos] is '\r'. If pos < length, this is a real CR inside the
		// caller's data, not the sentinel installed at data[length] — so a
		// mismatched byte after it is a definite wire-format violation, not
		// a truncated read.
		if data[pos+1] != '\n' {
			if pos+1 < length {
				return 0, ErrMalformed
			}
			return 0, nil
		}

		value := data[valueStart:pos]
		pos += 2

		slot := req.Slot(slotIdx)
		slot.Key, slot.Value = key, value

		if data[pos] == '\r' {
			if data[pos+1] != '\n' {
				if pos+1 < length {
					return 0, ErrMalformed
				}
				return 0, nil
			}

			pos += 2
			terminator := req.Slot(slotIdx + 1)
			terminator.Key, terminator.Value = nil, nil

			finish(req, slotIdx)
			return pos, nil
		}
	}

	// exhausted MaxHeaders slots (request line + MaxHeaders-1 headers)
	// without reaching the terminal blank line: too many headers.
	return 0, ErrTooManyHeaders
}

// finish runs the post-carve bookkeeping spec.md assigns to the head
// scanner: trimming the " HTTP/1.x" suffix off the request line's value,
// deriving ancientHttp from its last digit, locating the query separator,
// and rebuilding the bloom filter over the headers just carved.
func finish(req *request.Request, lastHeaderSlot int) {
	requestLine := req.Slot(0)
	v := requestLine.Value

	ancient := len(v) > 0 && v[len(v)-1] == '0'

	trimmed := len(v) - 9
	if trimmed < 0 {
		trimmed = 0
	}
	requestLine.Value = v[:trimmed]
	req.SetAncient(ancient)

	sep := bytes.IndexByte(requestLine.Value, '?')
	if sep == -1 {
		sep = len(requestLine.Value)
	}
	req.SetQuerySeparator(sep)

	bf := req.BloomFilter()
	bf.Reset()
	for i := 1; i <= lastHeaderSlot; i++ {
		slot := req.Slot(i)
		if len(slot.Key) == 0 {
			break
		}
		bf.Add(slot.Key)
	}
}
