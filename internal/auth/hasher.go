package auth

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt with a configurable work factor. bcrypt salts every
// hash itself, so equal passwords produce distinct opaque values.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher. Costs outside bcrypt's range fall back to
// the library default.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash derives the opaque stored form of a password.
func (h Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the password matches the stored hash.
func (h Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
