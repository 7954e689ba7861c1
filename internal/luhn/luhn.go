// Package luhn implements the Luhn checksum over PAN-like numeric
// strings: validation, generation of valid numbers, masking, and
// derivation of BIN/last4. It is pure and safe for concurrent use.
package luhn

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrInvalidInput is returned when an input is non-numeric or too short
// for the requested operation.
var ErrInvalidInput = errors.New("luhn: invalid input")

const maskChar = "*"

// checksum computes the Luhn sum over the full digit sequence, check
// digit included. Starting from the rightmost digit, every second digit
// is doubled; doubles above 9 have 9 subtracted.
func checksum(digits []int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := digits[len(digits)-1-i]
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum
}

func toDigits(s string) ([]int, bool) {
	digits := make([]int, 0, len(s))
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, false
		}
		digits = append(digits, int(r-'0'))
	}
	return digits, true
}

// Validate reports whether number passes the Luhn check. It fails
// closed: empty or non-numeric input is never valid.
func Validate(number string) bool {
	if number == "" {
		return false
	}
	digits, ok := toDigits(number)
	if !ok {
		return false
	}
	return checksum(digits)%10 == 0
}

// Generate produces a Luhn-valid number of exactly totalLength digits
// starting with prefix. The body is filled with random digits and the
// trailing check digit is computed so the whole number validates.
func Generate(prefix string, totalLength int) (string, error) {
	digits, ok := toDigits(prefix)
	if !ok || prefix == "" {
		return "", fmt.Errorf("%w: prefix must be numeric", ErrInvalidInput)
	}
	if len(prefix) >= totalLength {
		return "", fmt.Errorf("%w: prefix must be shorter than total length", ErrInvalidInput)
	}

	bodyLen := totalLength - len(prefix) - 1
	for i := 0; i < bodyLen; i++ {
		digits = append(digits, rand.Intn(10))
	}

	// Check digit such that the full sequence sums to a multiple of 10.
	check := (10 - checksum(append(append([]int{}, digits...), 0))%10) % 10
	digits = append(digits, check)

	var b strings.Builder
	b.Grow(totalLength)
	for _, d := range digits {
		b.WriteByte(byte('0' + d))
	}
	return b.String(), nil
}

// Mask replaces every character except the last 4 with '*', preserving
// the total length.
func Mask(raw string) (string, error) {
	if len(raw) < 4 {
		return "", fmt.Errorf("%w: input must be at least 4 characters", ErrInvalidInput)
	}
	return strings.Repeat(maskChar, len(raw)-4) + raw[len(raw)-4:], nil
}

// SplitBinLast4 derives the BIN (first 6 digits) and last4 from a
// numeric PAN-like string of at least 10 digits.
func SplitBinLast4(raw string) (bin, last4 string, err error) {
	if _, ok := toDigits(raw); !ok || len(raw) < 10 {
		return "", "", fmt.Errorf("%w: input must be numeric and at least 10 digits", ErrInvalidInput)
	}
	return raw[:6], raw[len(raw)-4:], nil
}
