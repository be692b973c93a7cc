// Package rfm computes Recency/Frequency/Monetary features over
// canonical transactions. Three dimensions share one algorithm and
// differ only in the grouping key.
package rfm

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardstream-dev/cardstream/internal/model"
)

// Row is one group's RFM result.
type Row struct {
	Key         string
	RecencyDays int // days between the group's latest spend and the as-of date
	Frequency   int
	Monetary    decimal.Decimal
}

// KeyFunc extracts the grouping key from a transaction. ok=false drops
// the transaction from this dimension.
type KeyFunc func(model.CanonicalTransaction) (key string, ok bool)

// Compute aggregates spend transactions by key. Non-spend types never
// contribute. The as-of date is the latest qualifying spend date in the
// input, not wall-clock time, so results are reproducible. Groups with
// zero qualifying transactions are simply absent from the output.
func Compute(txns []model.CanonicalTransaction, key KeyFunc) []Row {
	type agg struct {
		latest    time.Time
		frequency int
		monetary  decimal.Decimal
	}

	groups := make(map[string]*agg)
	var asOf time.Time

	for _, t := range txns {
		if !t.Type.IsSpend() {
			continue
		}
		k, ok := key(t)
		if !ok {
			continue
		}
		if t.Date.After(asOf) {
			asOf = t.Date
		}
		g := groups[k]
		if g == nil {
			g = &agg{monetary: decimal.Zero}
			groups[k] = g
		}
		if t.Date.After(g.latest) {
			g.latest = t.Date
		}
		g.frequency++
		g.monetary = g.monetary.Add(t.Amount)
	}

	rows := make([]Row, 0, len(groups))
	for k, g := range groups {
		rows = append(rows, Row{
			Key:         k,
			RecencyDays: int(asOf.Sub(g.latest).Hours() / 24),
			Frequency:   g.frequency,
			Monetary:    g.monetary,
		})
	}

	// Monetary descending, key ascending: deterministic output order.
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Monetary.Equal(rows[j].Monetary) {
			return rows[i].Monetary.GreaterThan(rows[j].Monetary)
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// ByMerchant groups by merchant category. Categories flagged for RFM
// exclusion in the rule table are omitted.
func ByMerchant(txns []model.CanonicalTransaction, excluded map[string]bool) []Row {
	return Compute(txns, func(t model.CanonicalTransaction) (string, bool) {
		if t.Category == "" || excluded[t.Category] {
			return "", false
		}
		return t.Category, true
	})
}

// ByChannel groups by payment channel. Rows that are not third-party
// payment transactions carry no channel and are dropped.
func ByChannel(txns []model.CanonicalTransaction) []Row {
	return Compute(txns, func(t model.CanonicalTransaction) (string, bool) {
		return t.Channel, t.Channel != ""
	})
}

// ByAccount groups by canonical account key (card-usage dimension).
func ByAccount(txns []model.CanonicalTransaction) []Row {
	return Compute(txns, func(t model.CanonicalTransaction) (string, bool) {
		return t.AccountKey, t.AccountKey != ""
	})
}
