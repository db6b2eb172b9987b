package security

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptVerifier verifies passwords against bcrypt hashes.
type BcryptVerifier struct {
	decoy []byte
}

// NewBcryptVerifier precomputes a decoy hash at the given cost so that
// Decoy spends as long as a real comparison.
func NewBcryptVerifier(cost int) (*BcryptVerifier, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("bcrypt: decoy seed: %w", err)
	}
	// bcrypt only reads the first 72 bytes; 32 random bytes are plenty.
	decoy, err := bcrypt.GenerateFromPassword(seed, cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: decoy hash: %w", err)
	}
	return &BcryptVerifier{decoy: decoy}, nil
}

func (v *BcryptVerifier) Verify(hash, password string) bool {
	if hash == "" {
		v.Decoy(password)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (v *BcryptVerifier) Decoy(password string) {
	_ = bcrypt.CompareHashAndPassword(v.decoy, []byte(password))
}

// HashPassword returns the bcrypt hash of password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
