package chunked

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecoder_SingleChunk(t *testing.T) {
	var d Decoder
	var chunks [][]byte
	var fins []bool

	consumed, done, err := d.Feed([]byte("5\r\nhello\r\n0\r\n\r\n"), func(chunk []byte, fin bool) bool {
		chunks = append(chunks, append([]byte(nil), chunk...))
		fins = append(fins, fin)
		return true
	})

	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, len("5\r\nhello\r\n0\r\n\r\n"), consumed)
	require.Equal(t, [][]byte{[]byte("hello"), nil}, chunks)
	require.Equal(t, []bool{false, true}, fins)
}

func TestDecoder_MultipleChunks(t *testing.T) {
	var d Decoder
	var chunks []string

	_, done, err := d.Feed([]byte("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"), func(chunk []byte, fin bool) bool {
		if !fin {
			chunks = append(chunks, string(chunk))
		}
		return true
	})

	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, []string{"Wiki", "pedia"}, chunks)
}

func TestDecoder_SplitAcrossFeeds(t *testing.T) {
	var d Decoder
	var chunks []string
	var done bool

	emit := func(chunk []byte, fin bool) bool {
		if !fin {
			chunks = append(chunks, string(chunk))
		}
		return true
	}

	parts := []string{"5\r\nhel", "lo\r\n0", "\r\n\r\n"}
	for _, p := range parts {
		_, d2, err := d.Feed([]byte(p), emit)
		require.NoError(t, err)
		if d2 {
			done = true
		}
	}

	require.True(t, done)
	require.Equal(t, []string{"hel", "lo"}, chunks)
}

func TestDecoder_MalformedSize(t *testing.T) {
	var d Decoder

	_, done, err := d.Feed([]byte("zz\r\n"), func([]byte, bool) bool { return true })

	require.Error(t, err)
	require.False(t, done)
}

func TestDecoder_MalformedCRLF(t *testing.T) {
	var d Decoder

	_, _, err := d.Feed([]byte("5\rx"), func([]byte, bool) bool { return true })

	require.Error(t, err)
}
