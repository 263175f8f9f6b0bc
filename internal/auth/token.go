// Package auth guards the HTTP API with static bearer tokens.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// TokenPrefix marks tokens minted by GenerateToken.
const TokenPrefix = "ck_"

// hashPrefix marks a configured entry that is already a SHA-256 digest.
const hashPrefix = "sha256:"

// GenerateToken creates a new raw token (TokenPrefix + 64 hex chars from 32
// random bytes) and returns it with its "sha256:" config form.
func GenerateToken() (raw, configured string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate random bytes: %w", err)
	}
	raw = TokenPrefix + hex.EncodeToString(b)
	return raw, hashPrefix + HashToken(raw), nil
}

// HashToken computes the SHA-256 hex digest of a raw token.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// TokenSet holds the digests of the accepted tokens.
type TokenSet struct {
	hashes [][]byte
}

// NewTokenSet accepts raw tokens or "sha256:<hex>" digests. Blank entries
// are skipped; a malformed digest is an error.
func NewTokenSet(entries []string) (*TokenSet, error) {
	s := &TokenSet{}
	for i, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		digest := HashToken(e)
		if strings.HasPrefix(e, hashPrefix) {
			digest = strings.ToLower(strings.TrimPrefix(e, hashPrefix))
			if b, err := hex.DecodeString(digest); err != nil || len(b) != sha256.Size {
				return nil, fmt.Errorf("token %d: malformed sha256 digest", i)
			}
		}
		s.hashes = append(s.hashes, []byte(digest))
	}
	return s, nil
}

// Len is the number of accepted tokens.
func (s *TokenSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.hashes)
}

// Contains compares raw against every digest in constant time per entry.
func (s *TokenSet) Contains(raw string) bool {
	if s == nil || raw == "" {
		return false
	}
	digest := []byte(HashToken(raw))
	found := 0
	for _, h := range s.hashes {
		found |= subtle.ConstantTimeCompare(digest, h)
	}
	return found == 1
}
