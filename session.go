package httpcore

import "github.com/httpcore-go/httpcore/internal/chunked"

// bodyKind tags which of BodyMode's variants is live. This replaces the
// original's "top two bits of remainingStreamingBytes" encoding with the
// tagged union spec.md's Design Note §9 recommends — same semantics,
// different (and here, type-checked) layout.
type bodyKind uint8

const (
	bodyIdle bodyKind = iota
	bodyCounted
	bodyChunked
)

// BodyMode is one connection's body-streaming progress: either idle
// (awaiting a new request head), counting down a Content-Length body, or
// driving the chunked decoder.
type BodyMode struct {
	kind      bodyKind
	remaining uint32
	dec       chunked.Decoder
}

func (b *BodyMode) reset() { *b = BodyMode{} }

func (b *BodyMode) isIdle() bool { return b.kind == bodyIdle }

func (b *BodyMode) setCounted(remaining uint32) {
	*b = BodyMode{kind: bodyCounted, remaining: remaining}
}

func (b *BodyMode) setChunked() {
	*b = BodyMode{kind: bodyChunked}
}

// Session is one connection's parser state: the bounded fallback buffer
// that stitches a request head across reads, and the current body mode.
// A zero-value Session is idle, matching spec.md §3's "a parser is created
// idle".
type Session struct {
	fallback []byte
	body     BodyMode
}
