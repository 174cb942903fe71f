package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const maxCodeLength = 16

type numericCodeGenerator struct{}

// NewCodeGenerator creates a CodeGenerator producing uniformly random decimal digits.
func NewCodeGenerator() CodeGenerator {
	return &numericCodeGenerator{}
}

// Generate returns length random digits. Leading zeros are kept, so "0042" is a valid code.
func (g *numericCodeGenerator) Generate(length int) (string, error) {
	if length < 1 || length > maxCodeLength {
		return "", errors.New("code length must be between 1 and 16")
	}

	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		//nolint:gosec // n is bounded [0,9]
		digits[i] = byte('0' + n.Int64())
	}

	return string(digits), nil
}
