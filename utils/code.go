package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Alphabet for printed QR tokens: no 0/O/1/I/l to survive low-quality prints.
const codeAlphabet = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateQRCodeToken returns a random short token for a printed QR code.
func GenerateQRCodeToken(n int) string {
	if n <= 0 {
		n = 10
	}
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand failure: fall back to a uuid-derived character
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
		}
		b.WriteByte(codeAlphabet[v.Int64()])
	}
	return b.String()
}
