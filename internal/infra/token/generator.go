// Package token implements issuing, reading and reaping of the opaque
// tokens backing email confirmation and profile-access links.
package token

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"

// tokenLength is the number of characters in every issued token
// (~381 bits of entropy over the 62-char alphabet).
const tokenLength = 64

// Generate returns a random token of tokenLength characters drawn from
// the alphanumeric alphabet. Tokens are filesystem and URL safe by
// construction.
func Generate() (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, tokenLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "failed to draw random token char")
		}
		buf[i] = alphabet[n.Int64()]
	}

	return string(buf), nil
}

// validToken reports whether a caller-supplied token could have been
// produced by Generate. Rejecting everything else keeps file-backed
// stores free of path traversal concerns.
func validToken(token string) bool {
	if len(token) != tokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
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
