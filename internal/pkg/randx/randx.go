/*
Package randx provides functions for generating cryptographically secure random identifiers.

It is used to issue connection ids for WebSocket sessions and Base62 token ids for
issued JWTs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// TokenIDLength is the fixed length of a generated token id.
	TokenIDLength = 16
)

// ConnectionID generates a UUID v4 string identifying a single WebSocket connection.
func ConnectionID() string {
	return uuid.New().String()
}

// TokenID generates a Base62 token id using crypto/rand.
func TokenID() (string, error) {
	result := make([]byte, TokenIDLength)

	for i := range TokenIDLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for token id: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// IsValidTokenID checks that id has TokenIDLength characters, all from Base62Chars.
func IsValidTokenID(id string) bool {
	if len(id) != TokenIDLength {
		return false
	}

	for _, char := range id {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
