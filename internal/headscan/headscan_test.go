package headscan

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/httpcore-go/httpcore/internal/proxyproto"
	"github.com/httpcore-go/httpcore/request"
)

// padded returns a buffer sized raw+32 with the sentinel pair already
// written, mirroring the contract Scan's caller must uphold.
func padded(raw string) ([]byte, int) {
	length := len(raw)
	buf := make([]byte, length+32)
	copy(buf, raw)
	buf[length] = '\r'
	buf[length+1] = 'a'
	return buf, length
}

func TestScan_SimpleGET(t *testing.T) {
	buf, n := padded("GET /a HTTP/1.1\r\nHost: x\r\n\r\n")

	var req request.Request
	consumed, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, "get", req.Method())
	require.Equal(t, "/a", req.URL())
	require.Equal(t, "x", req.Header("host"))
	require.False(t, req.IsAncient())
}

func TestScan_Ancient(t *testing.T) {
	buf, n := padded("GET / HTTP/1.0\r\n\r\n")

	var req request.Request
	consumed, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.True(t, req.IsAncient())
}

func TestScan_MalformedCRWithoutLF(t *testing.T) {
	buf, n := padded("GET /\rx\r\n\r\n")

	var req request.Request
	consumed, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.ErrorIs(t, err, ErrMalformed)
	require.Equal(t, 0, consumed)
}

func TestScan_TrailingCRIsIncompleteNotMalformed(t *testing.T) {
	// A CR as the very last real byte hasn't been followed by anything
	// real yet — it must be reported as incomplete, not malformed, even
	// though the byte after it (the sentinel) isn't LF either.
	buf, n := padded("GET / HTTP/1.1\r\nHost: x\r")

	var req request.Request
	consumed, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.NoError(t, err)
	require.Equal(t, 0, consumed)
}

func TestScan_Incomplete(t *testing.T) {
	buf, n := padded("GET /a HTTP/1.1\r\nHost: x")

	var req request.Request
	consumed, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.NoError(t, err)
	require.Equal(t, 0, consumed)
}

func TestScan_LowercasesKeysAndMethod(t *testing.T) {
	buf, n := padded("GET / HTTP/1.1\r\nX-Custom-Header: Value\r\n\r\n")

	var req request.Request
	consumed, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, "get", req.Method())
	require.Equal(t, "Value", req.Header("x-custom-header"))
}

func TestScan_NoQuery(t *testing.T) {
	buf, n := padded("GET /path HTTP/1.1\r\n\r\n")

	var req request.Request
	_, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.NoError(t, err)
	require.Equal(t, "/path", req.URL())
	require.Equal(t, "", req.Query())
}

func TestScan_WithQuery(t *testing.T) {
	buf, n := padded("GET /path?a=1&b=2 HTTP/1.1\r\n\r\n")

	var req request.Request
	_, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.NoError(t, err)
	require.Equal(t, "/path", req.URL())
	require.Equal(t, "a=1&b=2", req.Query())
}

func TestScan_HeaderNotPresent(t *testing.T) {
	buf, n := padded("GET / HTTP/1.1\r\nHost: x\r\n\r\n")

	var req request.Request
	_, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

	require.NoError(t, err)
	require.Equal(t, "", req.Header("does-not-exist"))
}

func TestScan_EachHeaderIterates(t *testing.T) {
	buf, n := padded("GET / HTTP/1.1\r\nA: 1\r\nB: 2\r\n\r\n")

	var req request.Request
	_, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)
	require.NoError(t, err)

	var seen []string
	req.EachHeader(func(key, value string) bool {
		seen = append(seen, key+"="+value)
		return true
	})

	require.Equal(t, []string{"a=1", "b=2"}, seen)
}

func headersReq(n int) string {
	var sb strings.Builder
	sb.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "h%d: v\r\n", i)
	}
	sb.WriteString("\r\n")
	return sb.String()
}

func TestScan_HeaderCountBoundary(t *testing.T) {
	t.Run("49 headers succeed", func(t *testing.T) {
		buf, n := padded(headersReq(49))

		var req request.Request
		consumed, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

		require.NoError(t, err)
		require.Equal(t, n, consumed)
	})

	t.Run("50 headers fail", func(t *testing.T) {
		buf, n := padded(headersReq(50))

		var req request.Request
		consumed, err := Scan(buf, n, &req, proxyproto.Noop{}, nil)

		require.ErrorIs(t, err, ErrTooManyHeaders)
		require.Equal(t, 0, consumed)
	})
}
