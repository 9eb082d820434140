// Package query implements the percent-decoding lookup the request view
// delegates single-key query lookups to. It is deliberately narrow: it does
// not build a map of the whole query string, only scans for the requested
// key and decodes its value, mirroring how the rest of this parser avoids
// doing work the caller didn't ask for.
package query

import (
	"bytes"

	"github.com/httpcore-go/httpcore/internal/hexconv"
)

// Lookup scans raw (the query string, without the leading '?') for key and
// returns its percent/plus-decoded value. buf is scratch space used only
// when the value actually contains escapes; when it doesn't, no decoding is
// done and buf is returned untouched. Either way the returned string is a
// copy and does not alias raw or buf.
//
// Grounded on the teacher's internal/query and internal/urlencoded decoders,
// narrowed from "parse everything into a map" to "find and decode one key".
func Lookup(raw, key []byte, buf []byte) (value string, buffer []byte, found bool) {
	for len(raw) > 0 {
		amp := bytes.IndexByte(raw, '&')
		pair := raw
		if amp != -1 {
			pair = raw[:amp]
		}

		eq := bytes.IndexByte(pair, '=')
		var pairKey, pairVal []byte
		if eq == -1 {
			pairKey, pairVal = pair, nil
		} else {
			pairKey, pairVal = pair[:eq], pair[eq+1:]
		}

		if equalDecoded(pairKey, key) {
			decoded, rest := decode(pairVal, buf)
			return string(decoded), rest, true
		}

		if amp == -1 {
			break
		}
		raw = raw[amp+1:]
	}

	return "", buf, false
}

// equalDecoded compares an (still percent-encoded) key against a plain,
// already-decoded key, without allocating a decoded copy of raw.
func equalDecoded(raw, key []byte) bool {
	for len(raw) > 0 {
		var c byte
		switch raw[0] {
		case '+':
			c, raw = ' ', raw[1:]
		case '%':
			if len(raw) < 3 {
				return false
			}
			hi, lo := hexconv.Parse(raw[1]), hexconv.Parse(raw[2])
			c, raw = hi<<4|lo, raw[3:]
		default:
			c, raw = raw[0], raw[1:]
		}

		if len(key) == 0 || key[0] != c {
			return false
		}
		key = key[1:]
	}

	return len(key) == 0
}

// decode percent/plus-decodes src into buf, returning the decoded slice and
// the buffer with its length advanced past it. When src has no escapes, it
// is returned unmodified and buf is returned untouched.
func decode(src, buf []byte) (decoded, rest []byte) {
	if bytes.IndexByte(src, '%') == -1 && bytes.IndexByte(src, '+') == -1 {
		return src, buf
	}

	start := len(buf)
	for len(src) > 0 {
		switch src[0] {
		case '+':
			buf = append(buf, ' ')
			src = src[1:]
		case '%':
			if len(src) < 3 {
				buf = append(buf, src[0])
				src = src[1:]
				continue
			}
			hi, lo := hexconv.Parse(src[1]), hexconv.Parse(src[2])
			buf = append(buf, hi<<4|lo)
			src = src[3:]
		default:
			buf = append(buf, src[0])
			src = src[1:]
		}
	}

	return buf[start:], buf
}
