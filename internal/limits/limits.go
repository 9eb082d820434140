// Package limits collects the parser's fixed tuning constants. They are not
// configurable at runtime: the scanner's sentinel trick, the header array
// size and the fallback buffer size are all sized into the implementation.
package limits

const (
	// MaxHeaders bounds the header slot array, slot 0 included (it carries
	// the request line). At most MaxHeaders-1 real headers are accepted.
	MaxHeaders = 50

	// MaxFallbackSize bounds how much of an incomplete request head the
	// parser will buffer across calls before giving up.
	MaxFallbackSize = 4096

	// MinimumPostPadding is how many writable bytes must follow the caller's
	// buffer so the scanner can install its sentinel CR without bounds checks.
	MinimumPostPadding = 32
)
