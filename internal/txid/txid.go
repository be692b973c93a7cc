// Package txid derives canonical transaction ids. Ids are content hashes
// rather than sequence numbers so re-running the pipeline on identical
// input yields identical ids, and store loads dedup on conflict.
package txid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/cardstream-dev/cardstream/internal/model"
)

const dateFormat = "2006-01-02"

// New returns the deterministic id for a canonical transaction. The hash
// covers the identifying fields: date, account, raw description, amount
// and type.
func New(t model.CanonicalTransaction) string {
	var b strings.Builder
	b.WriteString(t.Date.Format(dateFormat))
	b.WriteByte('|')
	b.WriteString(t.AccountKey)
	b.WriteByte('|')
	b.WriteString(t.RawDescription)
	b.WriteByte('|')
	b.WriteString(t.Amount.String())
	b.WriteByte('|')
	b.WriteString(string(t.Type))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
