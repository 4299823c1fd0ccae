// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"

	"github.com/samber/oops"
)

// TokenBytes is the entropy of session and confirmation tokens.
// 16 bytes = 32 hex chars, matching the identifiers already in the wild.
const TokenBytes = 16

// tokenRegex matches a well-formed opaque token: 32 lowercase hex chars.
var tokenRegex = regexp.MustCompile(`^[0-9a-f]{32}$`)

// NewToken generates a cryptographically random opaque token.
func NewToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidTokenFormat reports whether s looks like a token this service issued.
// Used to reject malformed Authorization headers before touching storage.
func ValidTokenFormat(s string) bool {
	return tokenRegex.MatchString(s)
}
