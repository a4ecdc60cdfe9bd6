// Package memzero wipes secret material (group keys, derived wrap keys,
// converted private scalars) once it leaves use.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros. ConstantTimeCopy keeps the write from being
// elided.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// Zero32 overwrites a fixed-size secret in place.
func Zero32(b *[32]byte) {
	Zero(b[:])
}
