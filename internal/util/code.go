package util

import (
	"crypto/rand"
)

// GenerateVerificationCode returns a 6-digit code for signup/login emails.
func GenerateVerificationCode() (string, error) {
	const digits = "0123456789"
	const length = 6

	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	for i := range b {
		b[i] = digits[b[i]%10]
	}

	return string(b), nil
}
