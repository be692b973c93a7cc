// Package identity resolves raw card references onto canonical account
// keys. All decisions are table-driven from configuration; the reconciler
// performs no heuristic matching, so every merge is auditable.
package identity

import (
	"fmt"

	"github.com/cardstream-dev/cardstream/internal/config"
)

// UnknownAccountError indicates a card reference that is not registered.
// Unmapped cards must be registered explicitly; inventing an identity
// here would silently merge unrelated accounts.
type UnknownAccountError struct {
	LastFour string
	CardName string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("card (%s, %s) is not registered to any account", e.LastFour, e.CardName)
}

type key struct {
	lastFour string
	cardName string
}

// Registry maps (last-4, card-name) composites to canonical account keys.
// Last-4 alone is not unique across physical cards, so the composite is
// the lookup key. Many composites may share one account key (dual-number
// products); one composite never maps to two accounts (config.Validate
// rejects that).
type Registry struct {
	accounts map[key]string
}

// NewRegistry builds a Registry from the configured card list.
func NewRegistry(cards []config.Card) *Registry {
	accounts := make(map[key]string, len(cards))
	for _, c := range cards {
		accounts[key{c.LastFour, c.Name}] = c.AccountKey
	}
	return &Registry{accounts: accounts}
}

// Resolve returns the canonical account key for a raw card reference.
func (r *Registry) Resolve(lastFour, cardName string) (string, error) {
	acct, ok := r.accounts[key{lastFour, cardName}]
	if !ok {
		return "", &UnknownAccountError{LastFour: lastFour, CardName: cardName}
	}
	return acct, nil
}

// Len returns the number of registered card composites.
func (r *Registry) Len() int { return len(r.accounts) }
