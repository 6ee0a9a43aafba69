// Package password hashes and checks account passwords with bcrypt.
package password

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. Tests lower it to bcrypt.MinCost.
var Cost = bcrypt.DefaultCost

func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Check returns nil when plain matches hash.
func Check(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// IsHash reports whether s looks like a bcrypt hash rather than a plaintext
// password left over from before hashing was introduced.
func IsHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, p) {
			_, err := bcrypt.Cost([]byte(s))
			return err == nil
		}
	}
	return false
}
