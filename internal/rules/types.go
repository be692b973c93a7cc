package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/model"
)

// TypeFilter classifies rows into transaction types before merchant
// classification, so repayment text never reaches the merchant rules.
// Keyword groups run in fixed order (repayment, redemption, fee), then
// the amount-sign fallbacks.
type TypeFilter struct {
	repayment  *regexp.Regexp
	redemption *regexp.Regexp
	fee        *regexp.Regexp
}

// NewTypeFilter compiles the configured keyword groups. A group with no
// keywords never matches.
func NewTypeFilter(kw config.TypeKeywords) (*TypeFilter, error) {
	repayment, err := compileGroup("repayment", kw.Repayment)
	if err != nil {
		return nil, err
	}
	redemption, err := compileGroup("redemption", kw.Redemption)
	if err != nil {
		return nil, err
	}
	fee, err := compileGroup("fee", kw.Fee)
	if err != nil {
		return nil, err
	}
	return &TypeFilter{repayment: repayment, redemption: redemption, fee: fee}, nil
}

// Classify maps a description and signed amount to a transaction type.
// Rows matching no keyword group: zero amounts are verification noise
// (unknown), negatives are refunds, positives are spend.
func (f *TypeFilter) Classify(description string, amount decimal.Decimal) model.TransactionType {
	switch {
	case f.repayment != nil && f.repayment.MatchString(description):
		return model.TypeRepayment
	case f.redemption != nil && f.redemption.MatchString(description):
		return model.TypeRedemption
	case f.fee != nil && f.fee.MatchString(description):
		return model.TypeFee
	case amount.IsZero():
		return model.TypeUnknown
	case amount.IsNegative():
		return model.TypeRefund
	default:
		return model.TypeSpend
	}
}

func compileGroup(name string, keywords []string) (*regexp.Regexp, error) {
	var parts []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			parts = append(parts, kw)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	pat, err := regexp.Compile("(?i)" + strings.Join(parts, "|"))
	if err != nil {
		return nil, fmt.Errorf("compiling %s keywords: %w", name, err)
	}
	return pat, nil
}
