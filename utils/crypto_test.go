package utils

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := h.Hash("S3cret!pass")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hashed == "S3cret!pass" {
		t.Fatalf("Hash() returned the plain password")
	}
	if !h.Compare(hashed, "S3cret!pass") {
		t.Errorf("Compare() with the right password = false")
	}
	if h.Compare(hashed, "wrong") {
		t.Errorf("Compare() with a wrong password = true")
	}
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	if h := NewBcryptHasher(100); h.Cost != bcrypt.DefaultCost {
		t.Errorf("Cost = %d, want %d", h.Cost, bcrypt.DefaultCost)
	}
}

func TestHMACRoundTrip(t *testing.T) {
	key := []byte("key")
	mac := GenerateHMAC("token", key)

	if !ValidateHMAC("token", mac, key) {
		t.Errorf("ValidateHMAC() = false for matching data")
	}
	if ValidateHMAC("other", mac, key) {
		t.Errorf("ValidateHMAC() = true for different data")
	}
}

func TestGenerateSecureTokenUnique(t *testing.T) {
	a, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken() error = %v", err)
	}
	b, _ := GenerateSecureToken(32)
	if a == b {
		t.Errorf("two tokens are equal: %s", a)
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !IsExpired(now.Add(-time.Second), now) {
		t.Errorf("past expiry should be expired")
	}
	if IsExpired(now.Add(time.Second), now) {
		t.Errorf("future expiry should not be expired")
	}
}
