package rules

// Classifier applies one ordered rule family to free-text descriptions.
// The same description may match both the merchant and channel families;
// the two classifications are independent.
type Classifier struct {
	rules []PatternRule
}

// NewClassifier wraps an already-ordered rule slice.
func NewClassifier(rules []PatternRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the first rule whose pattern matches text, in priority
// order. ok is false when no rule matches; the caller decides the
// fall-through (merchant: "unclassified", channel: none).
func (c *Classifier) Classify(text string) (PatternRule, bool) {
	for _, r := range c.rules {
		if r.Pattern.MatchString(text) {
			return r, true
		}
	}
	return PatternRule{}, false
}

// ExcludedLabels returns the merchant labels flagged for RFM exclusion.
func (c *Classifier) ExcludedLabels() map[string]bool {
	out := make(map[string]bool)
	for _, r := range c.rules {
		if r.Exclude {
			out[r.Label] = true
		}
	}
	return out
}

// Len returns the number of rules.
func (c *Classifier) Len() int { return len(c.rules) }
