package core

import (
	"testing"
)

func TestGenerateAddress(t *testing.T) {
	for i := 0; i < 10; i++ {
		address, err := GenerateAddress()
		if err != nil {
			t.Fatalf("Failed to generate address: %v", err)
		}

		if len(address) != 42 {
			t.Errorf("Expected address length 42, got %d", len(address))
		}

		if address[:2] != AddressPrefix {
			t.Errorf("Expected prefix %s, got %s", AddressPrefix, address[:2])
		}

		if !IsAddress(address) {
			t.Errorf("Generated address %s is not recognized as an address", address)
		}
	}
}

func TestIsAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{
			name:    "Valid address",
			address: "0x1234567890123456789012345678901234567890",
			want:    true,
		},
		{
			name:    "Invalid prefix",
			address: "0MM12345678901234567890123456789012345678",
			want:    false,
		},
		{
			name:    "Non-hex characters",
			address: "0xzz34567890123456789012345678901234567890",
			want:    false,
		},
		{
			name:    "Too short",
			address: "0x123",
			want:    false,
		},
		{
			name:    "Too long",
			address: "0x123456789012345678901234567890123456789012",
			want:    false,
		},
		{
			name:    "Empty string",
			address: "",
			want:    false,
		},
		{
			name:    "Missing 0x prefix",
			address: "1234567890123456789012345678901234567890",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAddress(tt.address); got != tt.want {
				t.Errorf("IsAddress() = %v, want %v", got, tt.want)
			}
		})
	}
}
