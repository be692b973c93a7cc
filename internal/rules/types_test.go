package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/model"
)

func testTypeFilter(t *testing.T) *TypeFilter {
	t.Helper()
	f, err := NewTypeFilter(config.TypeKeywords{
		Repayment:  []string{"繳款", "AUTOPAY", "PAYMENT RECEIVED"},
		Redemption: []string{"折抵", "POINT REDEMPTION"},
		Fee:        []string{"年費", "ANNUAL FEE", "手續費"},
	})
	require.NoError(t, err)
	return f
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestTypeFilter_Classify(t *testing.T) {
	f := testTypeFilter(t)

	tests := []struct {
		desc   string
		amount string
		want   model.TransactionType
	}{
		{"信用卡繳款-自動扣繳", "-5000", model.TypeRepayment},
		{"AUTOPAY PAYMENT RECEIVED", "-5000", model.TypeRepayment},
		{"POINT REDEMPTION CREDIT", "-200", model.TypeRedemption},
		{"ANNUAL FEE", "600", model.TypeFee},
		{"國外交易手續費", "15", model.TypeFee},
		{"7-ELEVEN", "120", model.TypeSpend},
		{"SOME SHOP REFUND", "-120", model.TypeRefund},
		{"CARD VERIFICATION", "0", model.TypeUnknown},
	}
	for _, tt := range tests {
		got := f.Classify(tt.desc, dec(tt.amount))
		assert.Equal(t, tt.want, got, "desc %q amount %s", tt.desc, tt.amount)
	}
}

func TestTypeFilter_KeywordsBeatSign(t *testing.T) {
	// A repayment keyword wins even on a positive amount; sign fallbacks
	// apply only to unmatched rows.
	f := testTypeFilter(t)
	assert.Equal(t, model.TypeRepayment, f.Classify("繳款", dec("5000")))
}

func TestTypeFilter_EmptyGroups(t *testing.T) {
	f, err := NewTypeFilter(config.TypeKeywords{})
	require.NoError(t, err)
	assert.Equal(t, model.TypeSpend, f.Classify("繳款", dec("100")),
		"no keywords configured means no keyword ever matches")
}

func TestTypeFilter_BadKeyword(t *testing.T) {
	_, err := NewTypeFilter(config.TypeKeywords{Fee: []string{"[bad"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fee keywords")
}

func TestIsSpend(t *testing.T) {
	assert.True(t, model.TypeSpend.IsSpend())
	for _, tt := range []model.TransactionType{
		model.TypeRepayment, model.TypeFee, model.TypeRedemption,
		model.TypeRefund, model.TypeUnknown,
	} {
		assert.False(t, tt.IsSpend(), "%s is not spend", tt)
	}
}
