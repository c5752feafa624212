// Package crypto derives per-user database encryption keys.
// Each user's SQLCipher database is keyed with a DEK derived from the
// service master key using HKDF-SHA256, with the user id as domain
// separation. Losing the master key makes every user database unreadable.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DEKSize is the size of a Data Encryption Key in bytes (256 bits).
const DEKSize = 32

// DeriveUserDEK derives the 32-byte SQLCipher key for a user's database.
// masterKeyHex must be 64 hex characters (32 bytes). The derivation is
// deterministic: the same master key and user id always produce the same DEK.
func DeriveUserDEK(masterKeyHex, userID string) ([]byte, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(masterKey))
	}

	info := "user:" + userID + ":dek:v1"
	hkdfReader := hkdf.New(sha256.New, masterKey, nil, []byte(info))

	dek := make([]byte, DEKSize)
	if _, err := io.ReadFull(hkdfReader, dek); err != nil {
		// HKDF cannot fail for valid inputs of this length.
		panic(fmt.Sprintf("HKDF failed: %v", err))
	}
	return dek, nil
}
