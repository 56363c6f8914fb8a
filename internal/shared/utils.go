// Package shared holds small helpers used by both binaries.
package shared

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Use it to drop secrets such as access tokens from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
