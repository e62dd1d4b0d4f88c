package pointers

// Ptr returns a pointer to v. Useful for literal optional fields.
func Ptr[T any](v T) *T {
	return &v
}
