// Package id generates the opaque public identifiers exposed on the API:
// authorities, holders, delegations, requests and audit entries all carry one
// alongside their numeric primary key.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID32 returns a random identifier of exactly 32 lowercase hex characters,
// with no separators or prefixes.
func NewID32() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
