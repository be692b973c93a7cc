package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMerchantRules_Testdata(t *testing.T) {
	rules, err := LoadMerchantRules("../../testdata/merchant_rules.csv")
	require.NoError(t, err)
	require.Len(t, rules, 6)

	// Ordered highest priority first.
	assert.Equal(t, "7-ELEVEN", rules[0].Label)
	assert.Equal(t, 100, rules[0].Priority)
	assert.True(t, rules[4].Exclude, "GOVERNMENT is RFM-excluded")
}

func TestLoadChannelRules_Testdata(t *testing.T) {
	rules, err := LoadChannelRules("../../testdata/channel_rules.csv")
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "LINE Pay", rules[0].Label)
	assert.Equal(t, "LinePay-", rules[0].Prefix)
}

func TestReadMerchantRules_BadPattern(t *testing.T) {
	csv := "pattern,label,replacement,priority,exclude\n" +
		"[unclosed,BAD,,10,false\n"
	_, err := ReadMerchantRules(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling pattern")
}

func TestReadMerchantRules_EmptyPattern(t *testing.T) {
	csv := "pattern,label,replacement,priority,exclude\n" +
		",BAD,,10,false\n"
	_, err := ReadMerchantRules(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty pattern")
}

func TestClassify_MerchantNormalization(t *testing.T) {
	rules, err := LoadMerchantRules("../../testdata/merchant_rules.csv")
	require.NoError(t, err)
	c := NewClassifier(rules)

	// All observed variants of the same chain classify to one label.
	for _, text := range []string{"7-ELEVEN CITY", "7-11 NANGANG", "統一超商 台北門市"} {
		rule, ok := c.Classify(text)
		require.True(t, ok, "expected a match for %q", text)
		assert.Equal(t, "7-ELEVEN", rule.Label, "text %q", text)
		assert.Equal(t, "7-ELEVEN", rule.Replacement)
	}
}

func TestClassify_NoMatch(t *testing.T) {
	c := NewClassifier(nil)
	_, ok := c.Classify("ANYTHING")
	assert.False(t, ok)
}

func TestClassify_Deterministic(t *testing.T) {
	rules, err := LoadMerchantRules("../../testdata/merchant_rules.csv")
	require.NoError(t, err)
	c := NewClassifier(rules)

	first, ok := c.Classify("STARBUCKS RESERVE")
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := c.Classify("STARBUCKS RESERVE")
		require.True(t, ok)
		assert.Equal(t, first.Label, again.Label)
	}
}

func TestClassify_PriorityBeatsFileOrder(t *testing.T) {
	// Both rules match "COFFEE"; the later row has the higher priority
	// and must win.
	csv := "pattern,label,replacement,priority,exclude\n" +
		"COFFEE,GENERIC,,10,false\n" +
		"COFFEE,SPECIFIC,,20,false\n"
	rules, err := ReadMerchantRules(strings.NewReader(csv))
	require.NoError(t, err)

	rule, ok := NewClassifier(rules).Classify("COFFEE SHOP")
	require.True(t, ok)
	assert.Equal(t, "SPECIFIC", rule.Label)
}

func TestClassify_FileOrderBreaksPriorityTies(t *testing.T) {
	csv := "pattern,label,replacement,priority,exclude\n" +
		"COFFEE,FIRST,,10,false\n" +
		"COFFEE,SECOND,,10,false\n"
	rules, err := ReadMerchantRules(strings.NewReader(csv))
	require.NoError(t, err)

	rule, ok := NewClassifier(rules).Classify("COFFEE SHOP")
	require.True(t, ok)
	assert.Equal(t, "FIRST", rule.Label)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	rules, err := LoadMerchantRules("../../testdata/merchant_rules.csv")
	require.NoError(t, err)
	_, ok := NewClassifier(rules).Classify("netflix.com")
	assert.True(t, ok)
}

func TestExcludedLabels(t *testing.T) {
	rules, err := LoadMerchantRules("../../testdata/merchant_rules.csv")
	require.NoError(t, err)
	excluded := NewClassifier(rules).ExcludedLabels()
	assert.True(t, excluded["GOVERNMENT"])
	assert.False(t, excluded["7-ELEVEN"])
}
