package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// AddressPrefix is the standard prefix of user addresses
const AddressPrefix = "0x"

// GenerateAddress generates a random user address.
// Format: 0x + 40 random hex characters
func GenerateAddress() (string, error) {
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return AddressPrefix + hex.EncodeToString(bytes), nil
}

// IsAddress checks whether a string is a well-formed user address
func IsAddress(address string) bool {
	if len(address) != 42 || address[:2] != AddressPrefix {
		return false
	}
	_, err := hex.DecodeString(address[2:])
	return err == nil
}
