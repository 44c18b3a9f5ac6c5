package hdraft

import "unsafe"

// bytesToString aliases b as a string with zero copies. Adapted from
// shockwave/pkg/shockwave/http2's bytesToString: used only for borrowed
// decode output, where the result's lifetime is explicitly bounded by the
// input buffer passed to Inflate and released at end_headers.
//
//go:inline
func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
