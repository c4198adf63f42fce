package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

// NewCode returns a numeric one-time code with exactly the requested number
// of digits (no leading zero), drawn uniformly from crypto/rand. For six
// digits the range is [100000, 999999].
func NewCode(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid code digits")
	}

	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}

	n, err := rand.Int(rand.Reader, big.NewInt(9*low))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(low+n.Int64(), 10), nil
}
