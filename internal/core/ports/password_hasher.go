package ports

// PasswordHasher is the one-way credential hashing port.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A malformed hash
	// fails closed (false), never true.
	Verify(plaintext, hash string) bool
}
