package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen[T any](buf []T, n int) []T {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]T, n)
}

// ToFloat32 narrows src into dst, growing dst when needed, and returns it.
func ToFloat32(dst []float32, src []float64) []float32 {
	dst = EnsureLen(dst, len(src))
	for i, v := range src {
		dst[i] = float32(v)
	}
	return dst
}

// ToFloat64 widens src into dst, growing dst when needed, and returns it.
func ToFloat64(dst []float64, src []float32) []float64 {
	dst = EnsureLen(dst, len(src))
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}
