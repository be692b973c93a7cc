// Package rules holds the versioned pattern tables and the classifiers
// built from them: merchant and payment-channel pattern rules, and the
// transaction-type keyword filter.
package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PatternRule is one ordered (pattern, canonical label) pair. Rules are
// evaluated highest priority first; among equal priorities, file order
// holds. First match wins — classification is priority-based, not
// longest-match.
type PatternRule struct {
	Pattern     *regexp.Regexp
	Label       string
	Replacement string // canonical merchant display name; "" = keep raw
	Prefix      string // channel family: prepended to the merchant name
	Priority    int
	Exclude     bool // merchant family: omit from RFM aggregation
}

// Merchant rule CSV columns.
const merchantHeader = "pattern,label,replacement,priority,exclude"

const (
	mNumFields = 5
	mColPat    = 0
	mColLabel  = 1
	mColRepl   = 2
	mColPrio   = 3
	mColExcl   = 4
)

// Channel rule CSV columns.
const channelHeader = "pattern,label,prefix,priority"

const (
	cNumFields = 4
	cColPat    = 0
	cColLabel  = 1
	cColPrefix = 2
	cColPrio   = 3
)

// ReadMerchantRules reads an ordered merchant rule table.
func ReadMerchantRules(r io.Reader) ([]PatternRule, error) {
	records, err := readRuleCSV(r, mNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading merchant rules: %w", err)
	}

	var rules []PatternRule
	for i, rec := range records {
		pat, err := compilePattern(rec[mColPat], i+2)
		if err != nil {
			return nil, err
		}
		prio, err := parsePriority(rec[mColPrio], i+2)
		if err != nil {
			return nil, err
		}
		rules = append(rules, PatternRule{
			Pattern:     pat,
			Label:       strings.TrimSpace(rec[mColLabel]),
			Replacement: strings.TrimSpace(rec[mColRepl]),
			Priority:    prio,
			Exclude:     strings.EqualFold(strings.TrimSpace(rec[mColExcl]), "true"),
		})
	}
	orderByPriority(rules)
	return rules, nil
}

// ReadChannelRules reads an ordered payment-channel rule table.
func ReadChannelRules(r io.Reader) ([]PatternRule, error) {
	records, err := readRuleCSV(r, cNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading channel rules: %w", err)
	}

	var rules []PatternRule
	for i, rec := range records {
		pat, err := compilePattern(rec[cColPat], i+2)
		if err != nil {
			return nil, err
		}
		prio, err := parsePriority(rec[cColPrio], i+2)
		if err != nil {
			return nil, err
		}
		rules = append(rules, PatternRule{
			Pattern:  pat,
			Label:    strings.TrimSpace(rec[cColLabel]),
			Prefix:   strings.TrimSpace(rec[cColPrefix]),
			Priority: prio,
		})
	}
	orderByPriority(rules)
	return rules, nil
}

// LoadMerchantRules reads a merchant rule file from disk.
func LoadMerchantRules(path string) ([]PatternRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening merchant rules: %w", err)
	}
	defer f.Close()
	return ReadMerchantRules(f)
}

// LoadChannelRules reads a channel rule file from disk.
func LoadChannelRules(path string) ([]PatternRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening channel rules: %w", err)
	}
	defer f.Close()
	return ReadChannelRules(f)
}

func readRuleCSV(r io.Reader, numFields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	// Skip header row.
	return records[1:], nil
}

func compilePattern(raw string, row int) (*regexp.Regexp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("row %d: empty pattern", row)
	}
	pat, err := regexp.Compile("(?i)" + raw)
	if err != nil {
		return nil, fmt.Errorf("row %d: compiling pattern %q: %w", row, raw, err)
	}
	return pat, nil
}

func parsePriority(raw string, row int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	prio, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("row %d: parsing priority %q: %w", row, raw, err)
	}
	return prio, nil
}

// orderByPriority sorts highest priority first, preserving file order
// among equals so evaluation order is stable and explicit.
func orderByPriority(rules []PatternRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
}
