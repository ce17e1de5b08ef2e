package auth

import (
	"crypto/rand"
	"math/big"
)

const randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// TokenLength is the size of generated org and RUM tokens
const TokenLength = 16

// RumTokenPrefix prefixes generated RUM tokens
const RumTokenPrefix = "rum"

// RandomGenerator returns a random string of the given length
type RandomGenerator func(length int) string

// GenerateRandomString returns an alphanumeric string of the given length
func GenerateRandomString(length int) string {
	if length <= 0 {
		return ""
	}

	max := big.NewInt(int64(len(randomAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		out[i] = randomAlphabet[n.Int64()]
	}

	return string(out)
}
