package bank

import (
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/model"
)

// Adapter converts one institution's raw statement export into
// BankRecords.
type Adapter interface {
	// Institution returns the identifier the adapter is registered under.
	Institution() string
	// Parse reads a whole export. Malformed rows are skipped and
	// reported in the result, never aborting the file; the error return
	// is for failures reading the export itself.
	Parse(r io.Reader, period Period) (*ParseResult, error)
}

// ParseResult holds the records of one export plus the rows that could
// not be parsed.
type ParseResult struct {
	Records []model.BankRecord
	Skipped []*RowParseError
}

// Registry holds one adapter per configured institution.
type Registry struct {
	adapters map[string]Adapter
	keywords map[string][]string // institution -> filename keywords
}

// NewRegistry builds adapters for every institution in the configuration.
func NewRegistry(institutions map[string]config.Institution) *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter, len(institutions)),
		keywords: make(map[string][]string, len(institutions)),
	}
	for id, inst := range institutions {
		switch inst.Format {
		case "xml":
			r.adapters[id] = &XMLAdapter{id: id, inst: inst}
		default:
			r.adapters[id] = &CSVAdapter{id: id, inst: inst}
		}
		r.keywords[id] = inst.FilenameKeywords
	}
	return r
}

// Get returns the adapter for an institution, or UnsupportedBankError.
func (r *Registry) Get(institution string) (Adapter, error) {
	a, ok := r.adapters[institution]
	if !ok {
		return nil, &UnsupportedBankError{Institution: institution}
	}
	return a, nil
}

// Detect resolves a file name to an institution via the configured
// filename keywords. Detection is deterministic: the longest matching
// keyword wins, ties broken by institution id.
func (r *Registry) Detect(filename string) (string, error) {
	bestID, bestLen := "", 0
	for id, kws := range r.keywords {
		for _, kw := range kws {
			if kw == "" || !strings.Contains(filename, kw) {
				continue
			}
			if len(kw) > bestLen || (len(kw) == bestLen && id < bestID) {
				bestID, bestLen = id, len(kw)
			}
		}
	}
	if bestID == "" {
		return "", &UnsupportedBankError{Institution: filename}
	}
	return bestID, nil
}

// parseDate tries the institution's layouts in order. Layouts without a
// year component are completed from the statement period.
func parseDate(inst config.Institution, period Period, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range inst.DateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !strings.Contains(layout, "2006") {
			if period.IsZero() {
				if firstErr == nil {
					firstErr = errNoPeriod
				}
				continue
			}
			return period.CompleteYear(t.Month(), t.Day()), nil
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, firstErr
}

// parseAmount normalizes thousand separators and applies the
// institution's sign convention so spend comes out positive.
func parseAmount(inst config.Institution, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if inst.DebitNegative {
		d = d.Neg()
	}
	return d, nil
}

var errNoPeriod = errNoStatementPeriod{}

type errNoStatementPeriod struct{}

func (errNoStatementPeriod) Error() string {
	return "date has no year and file name carries no statement period"
}
