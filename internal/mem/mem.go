// Package mem contains helpers for handling secret material in memory.
package mem

import "runtime"

// Zero overwrites the elements of s with their zero value. It is used on key
// bytes and on the limbs of secret scalars.
func Zero[S ~[]E, E any](s S) {
	clear(s)
	runtime.KeepAlive(s)
}
