// Package identity derives stable, deterministic identifiers for graph
// entities from their normalized semantic content. Every write into the
// graph is keyed by these ids, which is what makes re-running a refresh a
// merge instead of an insert.
//
// The normalization rules (trim, lowercase where specified, field order,
// separator) are load-bearing: changing any of them changes every id and
// breaks idempotence against an existing graph.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// idLen is the number of hex characters kept from the sha256 digest.
const idLen = 24

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:idLen]
}

// fromParts joins trimmed parts with "|" and hashes the result. Parts are
// not lowercased here; callers lowercase the fields that are
// case-insensitive.
func fromParts(parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	return hashString(strings.Join(trimmed, "|"))
}

// fromText joins parts with " | " after trimming and lowercasing each one,
// trims the joined string, and hashes it. Used for claim identity, where
// all fields are case-insensitive text.
func fromText(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return hashString(strings.TrimSpace(strings.Join(norm, " | ")))
}

// Company derives a company id from its name and ticker. Both are
// case-insensitive.
func Company(name, ticker string) string {
	return fromParts("company", strings.ToLower(name), strings.ToLower(ticker))
}

// Event derives an event id; one event exists per (company, type, period).
func Event(companyID, eventType, period string) string {
	return fromParts("event", companyID, eventType, period)
}

// Source derives a source id from its URL. The URL is trimmed but not
// lowercased: URL paths are case-sensitive.
func Source(url string) string {
	return hashString(strings.TrimSpace(url))
}

// Claim derives a claim id from its identity-relevant fields. A nil
// timeframe participates as the empty string, so claims that differ only in
// having "no timeframe" vs an explicit one get distinct ids. The supporting
// source is deliberately not part of the identity: the same claim text
// surfaced by a second source reuses the first claim node.
func Claim(companyName, period, claimType, timeframe, text string) string {
	return fromText(companyName, period, claimType, timeframe, text)
}

// Signal derives a signal id; one signal exists per (company, event, type,
// window).
func Signal(companyID, eventID, signalType, window string) string {
	return fromParts("signal", companyID, eventID, signalType, window)
}
