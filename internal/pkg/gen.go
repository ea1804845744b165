package pkg

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// Ambiguous characters (I, O, 0, 1) are excluded from game codes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const gameCodeLength = 6

// GenerateGameCode - generates a 6-character game code.
func GenerateGameCode() (string, error) {
	buf := make([]byte, gameCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := make([]byte, gameCodeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}

	return string(code), nil
}

// GenerateGuestID - generates a fresh anonymous identity token subject.
func GenerateGuestID() string {
	return uuid.NewString()
}
