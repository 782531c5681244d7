package shortcode

import (
	"crypto/rand"
	"math/big"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// Length is the fixed short-code length. 62^6 codes per tenant keeps
	// collisions on the birthday bound rare enough for a retry loop.
	Length = 6
)

// Generate draws a fixed-length code uniformly at random from the
// alphanumeric alphabet. Uniqueness is not guaranteed here; the store's
// (short_code, tenant_id) unique index is the authority and callers redraw
// on a duplicate-key error.
func Generate() string {
	b := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform source is broken
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// Valid reports whether s has the expected length and alphabet.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
