// Package chunked implements the reentrant chunked-transfer-encoding body
// decoder the dispatch loop drives during body streaming.
//
// Grounded on the teacher's superseded in-tree
// internal/parser/http1/chunkedbodyparser.go (since superseded by the
// external github.com/indigo-web/chunkedbody module, whose API isn't
// present anywhere in the retrieval pack to ground against). Per spec.md's
// Design Note on "encoded sub-state in a counter", this keeps its own state
// field rather than packing it into the session's streaming counter — the
// tagged-variant alternative the design note recommends.
package chunked

import "errors"

// ErrMalformed is returned when the chunked wire format is violated: a
// non-hex chunk-size digit, or a CRLF that isn't.
var ErrMalformed = errors.New("malformed chunked body")

type state uint8

const (
	stateSize1 state = iota // first hex digit of a chunk-size line
	stateSize               // subsequent hex digits
	stateSizeCR
	stateSizeCRLF
	stateBody
	stateBodyCR
	stateBodyCRLF
	stateLastCR // saw CR right after a zero-length chunk-size line
)

// Decoder is one connection's chunked-body decoding progress. Its zero
// value is ready to decode a fresh body.
type Decoder struct {
	state     state
	size      uint32
	bodyStart int
}

// Emit is called once per decoded chunk, including a final zero-length
// chunk (fin=true) that marks the body terminator. It returns false to ask
// Feed to stop immediately without consuming any more input.
type Emit func(chunk []byte, fin bool) bool

// Feed decodes as much of data as it can, calling emit per decoded chunk.
// It returns how many leading bytes of data were consumed, whether the body
// terminator was reached, and any wire-format error. A partial chunk header
// or body spanning the end of data is resumed on the next Feed call.
func (d *Decoder) Feed(data []byte, emit Emit) (consumed int, done bool, err error) {
	for i := 0; i < len(data); i++ {
		c := data[i]

		switch d.state {
		case stateSize1:
			v, ok := unhex(c)
			if !ok {
				return i, false, ErrMalformed
			}
			d.size = uint32(v)
			d.state = stateSize

		case stateSize:
			switch c {
			case '\r':
				d.state = stateSizeCR
			case '\n':
				d.state = stateSizeCRLF
			default:
				v, ok := unhex(c)
				if !ok {
					return i, false, ErrMalformed
				}
				d.size = d.size<<4 | uint32(v)
			}

		case stateSizeCR:
			if c != '\n' {
				return i, false, ErrMalformed
			}
			d.state = stateSizeCRLF

		case stateSizeCRLF:
			if d.size == 0 {
				switch c {
				case '\r':
					d.state = stateLastCR
				case '\n':
					d.state = stateSize1
					emit(nil, true)
					return i + 1, true, nil
				default:
					return i, false, ErrMalformed
				}
				continue
			}

			d.bodyStart = i
			d.state = stateBody

		case stateBody:
			d.size--
			if d.size != 0 {
				continue
			}

			if !emit(data[d.bodyStart:i], false) {
				return i, false, nil
			}

			switch c {
			case '\r':
				d.state = stateBodyCR
			case '\n':
				d.state = stateBodyCRLF
			default:
				return i, false, ErrMalformed
			}

		case stateBodyCR:
			if c != '\n' {
				return i, false, ErrMalformed
			}
			d.state = stateBodyCRLF

		case stateBodyCRLF:
			switch c {
			case '\r':
				d.state = stateLastCR
			case '\n':
				d.state = stateSize1
			default:
				v, ok := unhex(c)
				if !ok {
					return i, false, ErrMalformed
				}
				d.size = uint32(v)
				d.state = stateSize
			}

		case stateLastCR:
			if c != '\n' {
				return i, false, ErrMalformed
			}
			d.state = stateSize1
			emit(nil, true)
			return i + 1, true, nil
		}
	}

	if d.state == stateBody {
		// the chunk's body runs off the end of data; flush what we have and
		// keep bodyStart relative to whatever the next Feed call brings.
		if !emit(data[d.bodyStart:], false) {
			return len(data), false, nil
		}
		d.bodyStart = 0
		d.state = stateBody
	}

	return len(data), false, nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
