package afdproto

// blurMask returns the position-dependent additive mask spec §4.2
// defines: the offset resets every 28 bytes; within a 28-byte block,
// positions where (i mod 3) == 0 use 9-minus-in-block-position, other
// positions use 17-minus-in-block-position.
func blurMask(idx int) int {
	blockPos := idx % 28
	if blockPos%3 == 0 {
		return 9 - blockPos
	}
	return 17 - blockPos
}

// Blur applies the remote's obfuscation transform. It exists for tests
// and for a test-double RSD server; the real remote performs this, this
// client only ever needs Unblur.
func Blur(s string) string {
	b := []byte(s)
	for i := range b {
		b[i] = byte(int(b[i]) + blurMask(i))
	}
	return string(b)
}

// Unblur reverses the transform applied to a Jl-tagged recipient field
// (spec §4.2). JL (uppercase) fields are passed through unchanged by the
// caller and never reach this function.
func Unblur(s string) string {
	b := []byte(s)
	for i := range b {
		b[i] = byte(int(b[i]) - blurMask(i))
	}
	return string(b)
}
