// Package httpcore implements a streaming HTTP/1.x request parser: given
// byte chunks as they arrive from a non-blocking socket, it carves request
// heads and body segments and dispatches them to application callbacks,
// retaining only the minimum state required to resume across chunk
// boundaries.
//
// Grounded on the teacher's internal/parser/http1 package for idiom (the
// incremental Parse-and-resume shape, zero-copy views via uf.B2S), and on
// original_source/src/HttpParser.h's consumePostPadded/
// fenceAndConsumePostPadded for the actual phase ordering this Consume
// implements.
package httpcore

import (
	"errors"
	"strconv"

	"github.com/httpcore-go/httpcore/internal/headscan"
	"github.com/httpcore-go/httpcore/internal/limits"
	"github.com/httpcore-go/httpcore/internal/proxyproto"
	"github.com/httpcore-go/httpcore/request"
)

// Signal is the outcome a callback returns, replacing the original's
// "return a different user pointer" convention, which conflated data and
// control. It has two values, Continue and Stop; Stop does not say whether
// the connection was upgraded, closed or errored.
type Signal int

const (
	// Continue asks the parser to keep dispatching.
	Continue Signal = iota
	// Stop asks the parser to return immediately without further callbacks
	// in this Consume call (the connection is being upgraded, closed, or
	// the application otherwise refuses to proceed).
	Stop
)

// Callbacks are invoked by Consume as it carves requests and body bytes out
// of the supplied data. None of the byte slices passed to them remain valid
// after the callback returns.
type Callbacks struct {
	// OnRequest is called once per parsed request head.
	OnRequest func(req *request.Request) Signal
	// OnData is called with each body segment; fin is true on the segment
	// that completes the body (possibly an empty one).
	OnData func(chunk []byte, fin bool) Signal
	// OnError is called at most once per Consume call, on an unrecoverable
	// parse condition. No further callbacks follow it.
	OnError func(err error) Signal
}

// Parser holds one connection's session state: the fallback buffer and body
// mode. A Parser belongs to exactly one connection and must only ever be
// entered from that connection's owning goroutine/event-loop turn — there is
// no internal locking, matching spec.md §5's single-threaded, cooperative,
// non-suspending model.
type Parser struct {
	session Session
	proxy   proxyproto.Parser

	// scanBuf is scratch space the fallback-drain phase scans the fallback
	// buffer's contents through: it guarantees the sentinel padding
	// headscan.Scan requires even though append-grown fallback slices make
	// no such capacity guarantee on their own.
	scanBuf [limits.MaxFallbackSize + 2]byte
}

// NewParser constructs an idle Parser. proxy may be nil, in which case
// connections are assumed never to speak the PROXY protocol.
func NewParser(proxy proxyproto.Parser) *Parser {
	if proxy == nil {
		proxy = proxyproto.Noop{}
	}

	return &Parser{proxy: proxy}
}

// Consume feeds data into the parser. data must have at least
// limits.MinimumPostPadding bytes of spare capacity past len(data) — Consume
// panics otherwise, since that's a caller contract bug, not a runtime
// condition (mirroring how the teacher's arena/allocator types panic on
// programmer error rather than return an error).
//
// reserved is forwarded untouched to the PROXY-protocol collaborator.
func (p *Parser) Consume(data []byte, reserved any, cb Callbacks) error {
	if cap(data)-len(data) < limits.MinimumPostPadding {
		panic("httpcore: Consume: data has insufficient trailing capacity")
	}

	length := len(data)

	// 1. Resume body.
	if !p.session.body.isIdle() {
		sig, consumed, err := p.consumeBody(data[:length], cb)
		if err != nil {
			return p.fail(cb, err)
		}
		if sig == Stop {
			return nil
		}

		data = data[consumed:]
		length = len(data)

		if !p.session.body.isIdle() {
			return nil
		}
	}

	// 2. Drain fallback.
	if len(p.session.fallback) > 0 {
		had := len(p.session.fallback)
		room := limits.MaxFallbackSize - had
		take := room
		if take > length {
			take = length
		}

		p.session.fallback = append(p.session.fallback, data[:take]...)

		n := copy(p.scanBuf[:], p.session.fallback)
		padded := padForScan(p.scanBuf[:n])
		var req request.Request
		consumed, scanErr := headscan.Scan(padded, n, &req, p.proxy, reserved)

		if scanErr != nil {
			return p.fail(cb, mapScanError(scanErr))
		}

		if consumed == 0 {
			if len(p.session.fallback) >= limits.MaxFallbackSize {
				return p.fail(cb, ErrHeaderFieldsTooLarge)
			}
			return nil
		}

		fromData := consumed - had
		p.session.fallback = p.session.fallback[:0]
		data = data[fromData:]
		length = len(data)

		sig := cb.OnRequest(&req)
		if sig == Stop {
			return nil
		}

		bodySig, consumed2, err := p.startBody(&req, data[:length], cb)
		if err != nil {
			return p.fail(cb, err)
		}
		if bodySig == Stop {
			return nil
		}

		data = data[consumed2:]
		length = len(data)
	}

	// 3. Normal parse (pipelined).
	for length > 0 {
		padded := padForScan(data[:length])
		var req request.Request
		consumed, scanErr := headscan.Scan(padded, length, &req, p.proxy, reserved)

		if scanErr != nil {
			return p.fail(cb, mapScanError(scanErr))
		}

		if consumed == 0 {
			break
		}

		data = data[consumed:]
		length = len(data)

		sig := cb.OnRequest(&req)
		if sig == Stop {
			return nil
		}

		bodySig, bodyConsumed, err := p.startBody(&req, data[:length], cb)
		if err != nil {
			return p.fail(cb, err)
		}
		if bodySig == Stop {
			return nil
		}

		data = data[bodyConsumed:]
		length = len(data)

		if !p.session.body.isIdle() {
			break
		}
	}

	// 4. Stash remainder.
	if length > 0 {
		if length > limits.MaxFallbackSize {
			return p.fail(cb, ErrHeaderFieldsTooLarge)
		}

		p.session.fallback = append(p.session.fallback[:0], data[:length]...)
	}

	return nil
}

// padForScan writes the sentinel pair into data's trailing padding and
// returns a slice extended to cover it, per headscan.Scan's contract.
func padForScan(data []byte) []byte {
	n := len(data)
	data = data[:n+2 : n+2]
	data[n] = '\r'
	data[n+1] = 'a'
	return data
}

// mapScanError translates headscan's internal sentinels to the package's
// public ones, so applications never need to import an internal package to
// compare against errors.Is.
func mapScanError(err error) error {
	switch {
	case errors.Is(err, headscan.ErrTooManyHeaders):
		return ErrTooManyHeaders
	default:
		return ErrMalformedHead
	}
}

// fail invokes OnError exactly once and returns its underlying error so the
// caller can decide what to do with the connection. No further callback is
// made in this Consume call.
func (p *Parser) fail(cb Callbacks, err error) error {
	if cb.OnError != nil {
		cb.OnError(err)
	}
	return err
}

// startBody decides the body mode for a freshly parsed request (per
// spec.md §4.3's "Body-presence decision") and immediately streams as much
// body as is present in data.
func (p *Parser) startBody(req *request.Request, data []byte, cb Callbacks) (Signal, int, error) {
	if req.Method() == "get" {
		p.session.body.reset()
		sig := cb.OnData(nil, true)
		return sig, 0, nil
	}

	if cl := req.Header("content-length"); cl != "" {
		remaining, err := parseContentLength(cl)
		if err != nil {
			return Continue, 0, err
		}

		if remaining == 0 {
			sig := cb.OnData(nil, true)
			return sig, 0, nil
		}

		p.session.body.setCounted(remaining)
	} else {
		p.session.body.setChunked()
	}

	return p.consumeBody(data, cb)
}

// parseContentLength validates and parses the Content-Length header value,
// rejecting non-digit bytes and 32-bit overflow. This resolves spec.md
// §9's Open Question in favor of the "safe reimplementation" option: the
// sentinel-byte protection the original relies on doesn't carry over to a
// Go uint32 accumulator without an explicit check.
func parseContentLength(v string) (uint32, error) {
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return 0, ErrBadContentLength
		}
	}

	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, ErrBadContentLength
	}

	return uint32(n), nil
}

// consumeBody streams as much of the current body mode as data holds,
// returning the control signal from the last OnData call, how many leading
// bytes of data were consumed, and any chunked-decoding error.
func (p *Parser) consumeBody(data []byte, cb Callbacks) (Signal, int, error) {
	switch p.session.body.kind {
	case bodyCounted:
		return p.consumeCounted(data, cb)
	case bodyChunked:
		return p.consumeChunked(data, cb)
	default:
		return Continue, 0, nil
	}
}

func (p *Parser) consumeCounted(data []byte, cb Callbacks) (Signal, int, error) {
	if len(data) == 0 {
		return Continue, 0, nil
	}

	remaining := p.session.body.remaining
	n := uint32(len(data))
	if n > remaining {
		n = remaining
	}

	fin := n == remaining
	sig := cb.OnData(data[:n], fin)

	if fin {
		p.session.body.reset()
	} else {
		p.session.body.remaining = remaining - n
	}

	return sig, int(n), nil
}

func (p *Parser) consumeChunked(data []byte, cb Callbacks) (Signal, int, error) {
	sig := Continue
	stopped := false

	consumed, done, err := p.session.body.dec.Feed(data, func(chunk []byte, fin bool) bool {
		sig = cb.OnData(chunk, fin)
		if sig == Stop {
			stopped = true
			return false
		}
		return true
	})

	if err != nil {
		return Continue, consumed, ErrChunkedBody
	}

	if done {
		p.session.body.reset()
	}

	if stopped {
		return Stop, consumed, nil
	}

	return Continue, consumed, nil
}
