// Package memx helps keep secrets short-lived in memory.
package memx

// Wipe overwrites b with zeros. Use it on password buffers once they are no
// longer needed. A nil slice is a no-op.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Clone returns a copy of b that the caller owns and must Wipe.
func Clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
