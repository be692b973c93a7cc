// Package pipeline orchestrates one normalization pass: parse raw rows,
// reconcile card identity, classify type, classify merchant and channel,
// and emit canonical transactions plus a per-cause skip summary.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cardstream-dev/cardstream/internal/bank"
	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/identity"
	"github.com/cardstream-dev/cardstream/internal/model"
	"github.com/cardstream-dev/cardstream/internal/rules"
	"github.com/cardstream-dev/cardstream/internal/txid"
)

// AuditSink receives one entry per skipped row or file, with the
// original text retained for audit.
type AuditSink interface {
	Record(file string, line int, cause, raw string) error
}

// Options tune a pipeline run.
type Options struct {
	Anonymize bool
	Audit     AuditSink
}

// Pipeline holds the read-only rule and mapping tables for a run. All
// tables are loaded once at construction and never mutated afterward;
// that invariant is what makes re-runs byte-for-byte identical.
type Pipeline struct {
	registry   *bank.Registry
	identities *identity.Registry
	merchants  *rules.Classifier
	channels   *rules.Classifier
	types      *rules.TypeFilter
	anonymizer *Anonymizer
	audit      AuditSink
	log        *logrus.Logger
}

// New builds a pipeline from validated configuration, loading the rule
// tables. Any missing or malformed table is fatal before the first row.
func New(cfg *config.Config, log *logrus.Logger, opts Options) (*Pipeline, error) {
	merchantRules, err := rules.LoadMerchantRules(cfg.Rules.MerchantRules)
	if err != nil {
		return nil, &config.ConfigurationError{Path: cfg.Rules.MerchantRules, Reason: err.Error()}
	}
	channelRules, err := rules.LoadChannelRules(cfg.Rules.ChannelRules)
	if err != nil {
		return nil, &config.ConfigurationError{Path: cfg.Rules.ChannelRules, Reason: err.Error()}
	}
	typeFilter, err := rules.NewTypeFilter(cfg.Rules.Types)
	if err != nil {
		return nil, &config.ConfigurationError{Reason: err.Error()}
	}

	p := &Pipeline{
		registry:   bank.NewRegistry(cfg.Institutions),
		identities: identity.NewRegistry(cfg.Cards),
		merchants:  rules.NewClassifier(merchantRules),
		channels:   rules.NewClassifier(channelRules),
		types:      typeFilter,
		audit:      opts.Audit,
		log:        log,
	}
	if opts.Anonymize {
		p.anonymizer = NewAnonymizer(cfg.Anonymize.Salt)
	}
	return p, nil
}

// Merchants exposes the merchant classifier (for RFM exclusion lookups).
func (p *Pipeline) Merchants() *rules.Classifier { return p.merchants }

// Run processes statement files in name order and returns the full
// ordered canonical sequence plus the run summary. Per-row errors are
// recovered locally; only failures reading a file abort the run.
func (p *Pipeline) Run(paths []string) ([]model.CanonicalTransaction, model.RunSummary, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var out []model.CanonicalTransaction
	var summary model.RunSummary

	for _, path := range sorted {
		name := filepath.Base(path)

		inst, err := p.registry.Detect(name)
		if err != nil {
			summary.UnsupportedFiles++
			p.log.WithField("file", name).Warn("no institution matches file name, skipping")
			p.record(name, 0, "unsupported-institution", name)
			continue
		}

		fileSummary, txns, err := p.processFile(path, inst)
		if err != nil {
			return nil, summary, err
		}
		summary.Add(fileSummary)
		for _, t := range txns {
			if t.Type == model.TypeUnknown {
				summary.UnknownTypes++
				p.log.WithFields(logrus.Fields{
					"file":        name,
					"description": t.RawDescription,
				}).Warn("transaction type unknown, excluded from aggregation")
			}
		}
		out = append(out, txns...)
	}

	if summary.UnknownAccounts > 0 {
		p.log.WithField("count", summary.UnknownAccounts).Error(
			"rows skipped for unregistered cards; account mapping configuration is incomplete")
	}
	return out, summary, nil
}

func (p *Pipeline) processFile(path, inst string) (model.FileSummary, []model.CanonicalTransaction, error) {
	name := filepath.Base(path)
	fs := model.FileSummary{File: name, Institution: inst}

	adapter, err := p.registry.Get(inst)
	if err != nil {
		return fs, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return fs, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := adapter.Parse(f, bank.DetectPeriod(name))
	if err != nil {
		return fs, nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	fs.Rows = len(res.Records) + len(res.Skipped)
	fs.ParseErrors = len(res.Skipped)
	for _, skip := range res.Skipped {
		p.log.WithFields(logrus.Fields{"file": name, "line": skip.Line, "field": skip.Field}).
			Warn("row skipped: ", skip.Err)
		p.record(name, skip.Line, "parse-error", skip.Raw)
	}

	var txns []model.CanonicalTransaction
	for _, rec := range res.Records {
		account, err := p.identities.Resolve(rec.CardLastFour, rec.CardName)
		if err != nil {
			var unknown *identity.UnknownAccountError
			if errors.As(err, &unknown) {
				fs.UnknownAccounts++
				p.log.WithFields(logrus.Fields{
					"file":      name,
					"last_four": unknown.LastFour,
					"card_name": unknown.CardName,
				}).Error("row skipped: card not registered")
				p.record(name, 0, "unknown-account", rec.Raw)
				continue
			}
			return fs, nil, err
		}
		txns = append(txns, p.assemble(rec, account))
	}

	fs.Canonical = len(txns)
	p.log.WithFields(logrus.Fields{
		"file":        name,
		"institution": inst,
		"rows":        fs.Rows,
		"canonical":   fs.Canonical,
	}).Info("file processed")
	return fs, txns, nil
}

// assemble turns one reconciled bank record into a canonical transaction.
// Merchant and channel classification run only for spend rows; labeling a
// repayment's merchant text would be meaningless.
func (p *Pipeline) assemble(rec model.BankRecord, account string) model.CanonicalTransaction {
	txnType := p.types.Classify(rec.Description, rec.Amount)

	merchant := sanitize(rec.Description)
	category := ""
	channel := ""

	if txnType.IsSpend() {
		if rule, ok := p.channels.Classify(rec.Description); ok {
			channel = rule.Label
			if rule.Prefix != "" {
				merchant = rule.Prefix + merchant
			}
		}
		if rule, ok := p.merchants.Classify(rec.Description); ok {
			category = rule.Label
			if rule.Replacement != "" {
				merchant = rule.Replacement
				if ch, ok := p.channels.Classify(rec.Description); ok && ch.Prefix != "" {
					merchant = ch.Prefix + rule.Replacement
				}
			}
		} else {
			category = model.CategoryUnclassified
		}
	}

	if p.anonymizer != nil {
		account = p.anonymizer.Token(account)
	}

	t := model.CanonicalTransaction{
		Date:           rec.Date,
		AccountKey:     account,
		RawDescription: rec.Description,
		Merchant:       merchant,
		Category:       category,
		Channel:        channel,
		Amount:         rec.Amount,
		Type:           txnType,
		Institution:    rec.Institution,
	}
	t.ID = txid.New(t)
	return t
}

func (p *Pipeline) record(file string, line int, cause, raw string) {
	if p.audit == nil {
		return
	}
	if err := p.audit.Record(file, line, cause, raw); err != nil {
		p.log.WithField("file", file).Warn("audit log write failed: ", err)
	}
}

var whitespace = regexp.MustCompile(`\s+`)

func sanitize(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
