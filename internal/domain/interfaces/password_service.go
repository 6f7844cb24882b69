package interfaces

// PasswordService abstracts the memory-hard password hashing primitive.
type PasswordService interface {
	// HashPassword produces a self-describing digest embedding the algorithm
	// parameters and a fresh random salt.
	HashPassword(password string) (string, error)

	// CheckPasswordHash recomputes the digest with the parameters embedded in
	// encodedHash and compares in constant time. A malformed digest yields
	// (false, err) so callers can log the parse failure while treating it as
	// a mismatch.
	CheckPasswordHash(password, encodedHash string) (bool, error)
}
