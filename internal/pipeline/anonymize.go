package pipeline

import "github.com/google/uuid"

// Anonymizer substitutes canonical account keys with stable synthetic
// tokens for artifacts intended for public distribution. Tokens are
// name-based UUIDs, so the same real account maps to the same token
// within and across runs under the same salt, preserving relational
// structure without exposing the real key.
type Anonymizer struct {
	ns uuid.UUID
}

// NewAnonymizer derives a token namespace from the configured salt.
func NewAnonymizer(salt string) *Anonymizer {
	return &Anonymizer{ns: uuid.NewSHA1(uuid.NameSpaceOID, []byte(salt))}
}

// Token returns the synthetic token for an account key.
func (a *Anonymizer) Token(accountKey string) string {
	return "ANON-" + uuid.NewSHA1(a.ns, []byte(accountKey)).String()
}
