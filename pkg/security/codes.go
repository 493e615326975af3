package security

import (
	"crypto/rand"
	"fmt"
)

// codeCharset excludes 0/O/1/I/L so codes survive being read aloud or typed.
var codeCharset = []rune("ABCDEFGHJKMNPQRSTUVWXYZ23456789")

// GenerateCode produces a random uppercase code of the given length using
// an unambiguous character set. Used for referral codes and wallet coupons.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	result := make([]rune, length)
	for i := 0; i < length; i++ {
		idx, err := randInt(len(codeCharset))
		if err != nil {
			return "", err
		}
		result[i] = codeCharset[idx]
	}
	return string(result), nil
}

// GenerateCodeWithPrefix prepends a fixed prefix to a random code, e.g.
// WALLET followed by four random characters.
func GenerateCodeWithPrefix(prefix string, length int) (string, error) {
	code, err := GenerateCode(length)
	if err != nil {
		return "", err
	}
	return prefix + code, nil
}

// randInt draws uniformly from [0, max). Bytes at or above the largest
// multiple of max are rejected and redrawn, otherwise the modulo would skew
// toward the low end of the range.
func randInt(max int) (int, error) {
	if max <= 0 || max > 256 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	limit := 256 - 256%max
	buff := make([]byte, 1)
	for {
		if _, err := rand.Read(buff); err != nil {
			return 0, err
		}
		if int(buff[0]) < limit {
			return int(buff[0]) % max, nil
		}
	}
}
