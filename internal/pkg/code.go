package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NumericCode draws a uniformly random code of exactly n decimal digits,
// leading zeros included.
func NumericCode(n int) (string, error) {
	if n <= 0 || n > 18 {
		return "", fmt.Errorf("code length %d out of range", n)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	x, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, x.Int64()), nil
}
