package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// OTPLength is the number of digits in a generated one-time code.
const OTPLength = 6

// GenerateOTP returns a numeric one-time code drawn from a cryptographic
// source. Codes are uniform over 100000 through 999999, the leading digit is
// never zero.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
