package utils

// Value dereferences v, returning the zero value when v is nil. Optional
// response fields arrive as pointers and most call sites want a plain value.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}
