package pkg

// ToPtr returns a pointer to v, for optional struct fields built from literals.
func ToPtr[T any](v T) *T {
	return &v
}
