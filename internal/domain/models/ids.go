package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"strconv"
	"time"
)

const (
	idFragmentLength     = 13
	verificationCodeBase = 100000
	verificationCodeSpan = 900000
)

// GenerateID builds a record id from two random base-36 fragments.
// Collisions are not checked.
func GenerateID() string {
	return idFragment() + idFragment()
}

func idFragment() string {
	fragment := strconv.FormatUint(mrand.Uint64(), 36)
	if len(fragment) > idFragmentLength {
		fragment = fragment[:idFragmentLength]
	}
	return fragment
}

// GenerateInvoiceNumber returns PI-YYYY-NNNN for proformas and INV-YYYY-NNNN for invoices.
func GenerateInvoiceNumber(kind DocumentType, now time.Time) string {
	prefix := "INV"
	if kind == DocumentProforma {
		prefix = "PI"
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, now.Year(), mrand.IntN(10000))
}

// GenerateVerificationCode returns a six digit code in the range 100000-999999.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeSpan))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return strconv.FormatInt(verificationCodeBase+n.Int64(), 10), nil
}

// GenerateLineItemID returns a short random id for a line item.
func GenerateLineItemID() string {
	return idFragment()
}
