// Package request defines the zero-copy request view the parser hands to
// application callbacks. Method, URL, Query, Header and EachHeader return
// strings that alias bytes of the caller's receive buffer (or, for a head
// stitched across reads, the parser's internal scan buffer); none of them is
// valid once the callback that received the view returns. QueryValue
// returns a copy.
package request

import (
	"bytes"

	"github.com/indigo-web/utils/uf"

	"github.com/httpcore-go/httpcore/internal/bloom"
	"github.com/httpcore-go/httpcore/internal/limits"
	"github.com/httpcore-go/httpcore/internal/query"
)

// Slot is a non-owning (key, value) pair referencing bytes inside some
// buffer. Slot 0 is special: Key is the method, Value is the request target
// (URL and query); the scanner trims the " HTTP/1.x" suffix off it.
type Slot struct {
	Key, Value []byte
}

// Request is the transient view over one parsed request head. Callers
// should declare it as a local value — it is meant to live on the stack for
// exactly the duration of one dispatch, never retained past it.
// slotCount is one more than limits.MaxHeaders: up to MaxHeaders slots hold
// the request line plus real headers, and the extra slot always has room
// for the empty-key terminator that marks the end of the header list (see
// DESIGN.md for why this differs from a literal MaxHeaders-sized array).
const slotCount = limits.MaxHeaders + 1

type Request struct {
	slots      [slotCount]Slot
	ancient    bool
	querySep   int
	bf         bloom.Filter
	didYield   bool
	parameters []string
}

// Slot returns a pointer to the i-th slot so the scanner can fill it
// directly. Only meant to be called by the head scanner.
func (r *Request) Slot(i int) *Slot { return &r.slots[i] }

// NumSlots is the fixed capacity of the header array, slot 0 included.
func (r *Request) NumSlots() int { return len(r.slots) }

// SetAncient records whether the request line declared HTTP/1.0.
func (r *Request) SetAncient(ancient bool) { r.ancient = ancient }

// SetQuerySeparator records the offset of '?' within slot 0's value
// (or its length, if absent).
func (r *Request) SetQuerySeparator(sep int) { r.querySep = sep }

// BloomFilter exposes the header-key filter for the scanner to populate.
func (r *Request) BloomFilter() *bloom.Filter { return &r.bf }

// Method returns the lowercased request method.
func (r *Request) Method() string { return uf.B2S(r.slots[0].Key) }

// URL returns the path component of the request line, without the query
// string.
func (r *Request) URL() string { return uf.B2S(r.slots[0].Value[:r.querySep]) }

// Query returns the raw (still percent-encoded), undecoded query string,
// without the leading '?'. Empty if the request line had none.
func (r *Request) Query() string {
	v := r.slots[0].Value
	if r.querySep >= len(v) {
		return ""
	}

	return uf.B2S(v[r.querySep+1:])
}

// QueryValue percent/plus-decodes and returns the value of key within the
// raw query string, delegating to the query decoder.
func (r *Request) QueryValue(key string) (value string, found bool) {
	v := r.slots[0].Value
	if r.querySep >= len(v) {
		return "", false
	}

	value, _, found = query.Lookup(v[r.querySep+1:], []byte(key), nil)
	return value, found
}

// Header returns the value of the first header matching the (already
// lowercased) key, or "" if none is present.
func (r *Request) Header(key string) string {
	kb := []byte(key)
	if !r.bf.MightContain(kb) {
		return ""
	}

	for i := 1; i < len(r.slots); i++ {
		slot := &r.slots[i]
		if len(slot.Key) == 0 {
			break
		}

		if len(slot.Key) == len(kb) && bytes.Equal(slot.Key, kb) {
			return uf.B2S(slot.Value)
		}
	}

	return ""
}

// EachHeader iterates header slots 1.. up to the empty-key sentinel, calling
// fn for each. Iteration stops early if fn returns false.
func (r *Request) EachHeader(fn func(key, value string) bool) {
	for i := 1; i < len(r.slots); i++ {
		slot := &r.slots[i]
		if len(slot.Key) == 0 {
			return
		}

		if !fn(uf.B2S(slot.Key), uf.B2S(slot.Value)) {
			return
		}
	}
}

// Parameter returns the i-th route parameter set by SetParameters, or "" if
// i is out of range. The parser never populates this itself — it is the
// router's (out-of-scope collaborator's) job.
func (r *Request) Parameter(i int) string {
	if i < 0 || i >= len(r.parameters) {
		return ""
	}

	return r.parameters[i]
}

// SetParameters attaches the router's ordered route-parameter views to this
// request view.
func (r *Request) SetParameters(parameters []string) { r.parameters = parameters }

// IsAncient reports whether the request line declared HTTP/1.0.
func (r *Request) IsAncient() bool { return r.ancient }

// GetYield reports whether the application refused to handle this request.
func (r *Request) GetYield() bool { return r.didYield }

// SetYield lets the application refuse to handle this request.
func (r *Request) SetYield(yield bool) { r.didYield = yield }
