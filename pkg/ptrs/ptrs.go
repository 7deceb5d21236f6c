// Package ptrs builds pointers to literals, for optional config fields such as a transform's p.
package ptrs

// Ptr returns a pointer to a copy of val.
func Ptr[T any](val T) *T {
	return &val
}
