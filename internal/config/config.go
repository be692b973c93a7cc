package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level cardstream.yaml configuration.
type Config struct {
	Institutions map[string]Institution `yaml:"institutions"`
	Cards        []Card                 `yaml:"cards"`
	Rules        RulesConfig            `yaml:"rules"`
	Anonymize    AnonymizeConfig        `yaml:"anonymize,omitempty"`
}

// Institution describes one bank's export format. Encoding and delimiter
// are declared here, never auto-detected.
type Institution struct {
	Format           string    `yaml:"format"`                    // "csv" or "xml"
	Delimiter        string    `yaml:"delimiter,omitempty"`       // default ","
	Encoding         string    `yaml:"encoding,omitempty"`        // "utf-8" (default) or "big5"
	HeaderKeyword    string    `yaml:"header_keyword,omitempty"`  // locates the header row in noisy exports
	Columns          ColumnMap `yaml:"columns"`
	DateLayouts      []string  `yaml:"date_layouts"` // Go layouts, tried in order
	DebitNegative    bool      `yaml:"debit_negative,omitempty"`
	FilenameKeywords []string  `yaml:"filename_keywords"`
}

// ColumnMap names the columns (CSV headers or XML elements) that carry
// each field of a raw row.
type ColumnMap struct {
	Date         string `yaml:"date"`
	Description  string `yaml:"description"`
	Amount       string `yaml:"amount"`
	CardLastFour string `yaml:"card_last_four"`
	CardName     string `yaml:"card_name"`
}

// Card registers one raw card identity and the canonical account it
// belongs to. A dual-number product lists two cards with one account_key.
type Card struct {
	LastFour   string `yaml:"last_four"`
	Name       string `yaml:"name"`
	AccountKey string `yaml:"account_key"`
}

// RulesConfig points at the ordered pattern rule tables and holds the
// transaction-type keyword groups.
type RulesConfig struct {
	MerchantRules string       `yaml:"merchant_rules"` // CSV path
	ChannelRules  string       `yaml:"channel_rules"`  // CSV path
	Types         TypeKeywords `yaml:"types"`
}

// TypeKeywords are regex fragments per non-spend transaction type,
// evaluated in struct order before the amount-sign fallbacks.
type TypeKeywords struct {
	Repayment  []string `yaml:"repayment"`
	Redemption []string `yaml:"redemption"`
	Fee        []string `yaml:"fee"`
}

// AnonymizeConfig controls the synthetic-token substitution mode.
type AnonymizeConfig struct {
	Salt string `yaml:"salt,omitempty"`
}

// Load reads a cardstream.yaml file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Reason: err.Error()}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "parsing YAML: " + err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration before any row is processed. Partial
// processing under broken configuration would silently produce wrong
// canonical data, so every problem found here is fatal.
func (c *Config) Validate() error {
	if len(c.Institutions) == 0 {
		return &ConfigurationError{Reason: "no institutions configured"}
	}
	for id, inst := range c.Institutions {
		if err := inst.validate(); err != nil {
			return &ConfigurationError{Reason: fmt.Sprintf("institution %q: %v", id, err)}
		}
	}

	// The (last_four, name) composite must be a function: one raw key
	// must never map to two canonical accounts.
	seen := make(map[[2]string]string, len(c.Cards))
	for _, card := range c.Cards {
		if card.LastFour == "" || card.Name == "" || card.AccountKey == "" {
			return &ConfigurationError{Reason: fmt.Sprintf("card %q/%q: last_four, name and account_key are all required", card.LastFour, card.Name)}
		}
		key := [2]string{card.LastFour, card.Name}
		if prev, ok := seen[key]; ok && prev != card.AccountKey {
			return &ConfigurationError{Reason: fmt.Sprintf("card (%s, %s) mapped to both %q and %q", card.LastFour, card.Name, prev, card.AccountKey)}
		}
		seen[key] = card.AccountKey
	}
	return nil
}

func (i Institution) validate() error {
	switch i.Format {
	case "csv", "xml":
	case "":
		return fmt.Errorf("format is required")
	default:
		return fmt.Errorf("unknown format %q", i.Format)
	}
	switch i.Encoding {
	case "", "utf-8", "big5":
	default:
		return fmt.Errorf("unknown encoding %q", i.Encoding)
	}
	if i.Columns.Date == "" || i.Columns.Description == "" || i.Columns.Amount == "" {
		return fmt.Errorf("columns date, description and amount are required")
	}
	if len(i.DateLayouts) == 0 {
		return fmt.Errorf("at least one date layout is required")
	}
	if len(i.FilenameKeywords) == 0 {
		return fmt.Errorf("at least one filename keyword is required")
	}
	return nil
}

// DelimiterRune returns the configured delimiter, defaulting to comma.
func (i Institution) DelimiterRune() rune {
	if i.Delimiter == "" {
		return ','
	}
	return []rune(i.Delimiter)[0]
}
