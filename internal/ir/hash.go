package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSession  = "asksort/session/v1"
	DomainJudgment = "asksort/judgment/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SessionFingerprint hashes the ordered input identities of a session.
// Two sessions over the same input in the same order share a fingerprint,
// which is what replay uses to confirm it is re-ranking the same input.
func SessionFingerprint(items []Identity) (string, error) {
	canonical, err := MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("SessionFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSession, canonical), nil
}

// JudgmentID computes a content-addressed ID for a judgment within a session.
func JudgmentID(sessionID string, j Judgment) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"session_id": sessionID,
		"judgment":   j,
	})
	if err != nil {
		return "", fmt.Errorf("JudgmentID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainJudgment, canonical), nil
}

// MustSessionFingerprint is like SessionFingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSessionFingerprint(items []Identity) string {
	fp, err := SessionFingerprint(items)
	if err != nil {
		panic(err)
	}
	return fp
}
