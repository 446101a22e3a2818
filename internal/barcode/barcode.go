// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package barcode generates, parses, and verifies the HMAC-signed team
// barcode payload printed on competitor entry cards. The codec is
// stateless and carries no expiry; higher-level services (see
// internal/services) add context checks such as event match and
// invalidation windows.
package barcode

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// legacyPrefix tags barcodes minted by a predecessor system. The codec only
// recognizes these (IsLegacy); Verify rejects them as malformed, and the
// codec never mints new ones.
const legacyPrefix = "AZTEC-"

// sigLength is the number of hex characters kept from the HMAC-SHA256 digest.
const sigLength = 16

// Parsed holds the four fields recovered from a well-formed payload.
type Parsed struct {
	EventID   string
	TeamID    string
	Timestamp int64
	Sig       string
}

// VerifyResult is the outcome of Verify.
type VerifyResult struct {
	Valid   bool
	EventID string
	TeamID  string
	Ts      int64
	Error   string
}

// Generate stamps the current wall-clock time and returns a signed payload
// of the form "{eventID}:{teamID}:{timestampMs}:{sig}".
func Generate(eventID, teamID, secret string) string {
	ts := time.Now().UnixMilli()
	return generateAt(eventID, teamID, ts, secret)
}

func generateAt(eventID, teamID string, ts int64, secret string) string {
	sig := sign(eventID, teamID, ts, secret)
	return strings.Join([]string{eventID, teamID, strconv.FormatInt(ts, 10), sig}, ":")
}

func sign(eventID, teamID string, ts int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(eventID + ":" + teamID + ":" + strconv.FormatInt(ts, 10)))
	digest := hex.EncodeToString(mac.Sum(nil))
	if len(digest) < sigLength {
		return digest
	}
	return digest[:sigLength]
}

// Parse splits a payload into its four colon-separated parts. It succeeds
// only when there are exactly four non-empty parts and the timestamp parses
// as an integer; it performs no signature check.
func Parse(payload string) (*Parsed, bool) {
	parts := strings.Split(payload, ":")
	if len(parts) != 4 {
		return nil, false
	}
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, false
	}
	return &Parsed{EventID: parts[0], TeamID: parts[1], Timestamp: ts, Sig: parts[3]}, true
}

// Verify parses payload, recomputes the expected signature, and compares it
// to the supplied signature in constant time. Parse failures and signature
// mismatches are reported through VerifyResult.Error rather than an error
// return, so scanners can show the reason without unwrapping anything.
func Verify(payload, secret string) VerifyResult {
	parts := strings.Split(payload, ":")
	if len(parts) != 4 {
		return VerifyResult{Valid: false, Error: "Invalid barcode format"}
	}
	for _, p := range parts {
		if p == "" {
			return VerifyResult{Valid: false, Error: "Invalid barcode format"}
		}
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return VerifyResult{Valid: false, Error: "Invalid barcode format"}
	}

	eventID, teamID, sig := parts[0], parts[1], parts[3]
	expected := sign(eventID, teamID, ts, secret)

	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return VerifyResult{Valid: false, Error: "Invalid signature"}
	}

	return VerifyResult{Valid: true, EventID: eventID, TeamID: teamID, Ts: ts}
}

// IsLegacy reports whether payload uses the predecessor system's
// prefix-tagged form. The service may still accept these during migration.
func IsLegacy(payload string) bool {
	return strings.HasPrefix(payload, legacyPrefix)
}
