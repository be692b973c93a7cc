// Package mockgen produces synthetic raw statement files that match the
// real exports' shape, for public demonstration without exposing real
// account data. Output is deterministic for a fixed seed.
package mockgen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"github.com/cardstream-dev/cardstream/internal/config"
)

// Options configure a generation run.
type Options struct {
	Rows  int   // rows per institution file
	Seed  int64 // 0 = current time
	Year  int
	Month int
}

// DefaultOptions returns sensible defaults for a demo dataset.
func DefaultOptions() Options {
	return Options{Rows: 25, Year: 2026, Month: 1}
}

// Generator emits one synthetic statement file per configured
// institution, shaped by that institution's descriptor.
type Generator struct {
	cfg  *config.Config
	opts Options
	rand *rand.Rand
}

// New returns a configured Generator.
func New(cfg *config.Config, opts Options) *Generator {
	if opts.Rows <= 0 {
		opts.Rows = DefaultOptions().Rows
	}
	if opts.Year == 0 {
		opts.Year = DefaultOptions().Year
	}
	if opts.Month < 1 || opts.Month > 12 {
		opts.Month = DefaultOptions().Month
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, opts: opts, rand: rand.New(rand.NewSource(opts.Seed))}
}

var merchantPool = []string{
	"7-ELEVEN", "FAMILYMART", "MCDONALDS TAIPEI", "UBER EATS",
	"LINEPAY*COFFEE SHOP", "JKOPAY*NIGHT MARKET", "PX MART",
	"NETFLIX.COM", "SHOPEE", "MOMOSHOP", "STARBUCKS", "EVA AIR",
}

var creditPool = []string{
	"AUTOPAY PAYMENT RECEIVED", "POINT REDEMPTION CREDIT", "ANNUAL FEE",
}

// Generate writes one file per institution into dir and returns the file
// paths in institution order.
func (g *Generator) Generate(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	// Institution order must be deterministic for a fixed seed.
	ids := make([]string, 0, len(g.cfg.Institutions))
	for id := range g.cfg.Institutions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var paths []string
	for _, id := range ids {
		inst := g.cfg.Institutions[id]
		name := g.fileName(id, inst)
		path := filepath.Join(dir, name)

		var err error
		if inst.Format == "xml" {
			err = g.writeXML(path, inst)
		} else {
			err = g.writeCSV(path, inst)
		}
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (g *Generator) fileName(id string, inst config.Institution) string {
	keyword := id
	if len(inst.FilenameKeywords) > 0 {
		keyword = inst.FilenameKeywords[0]
	}
	ext := "csv"
	if inst.Format == "xml" {
		ext = "xml"
	}
	return fmt.Sprintf("%s_%04d%02d.%s", keyword, g.opts.Year, g.opts.Month, ext)
}

type mockRow struct {
	date     string
	desc     string
	amount   string
	lastFour string
	cardName string
}

func (g *Generator) row(inst config.Institution) mockRow {
	day := 1 + g.rand.Intn(28)
	date := time.Date(g.opts.Year, time.Month(g.opts.Month), day, 0, 0, 0, 0, time.UTC)

	desc := merchantPool[g.rand.Intn(len(merchantPool))]
	amount := decimal.NewFromInt(int64(50 + g.rand.Intn(3000)))
	// Roughly one row in ten is a non-spend credit line.
	if g.rand.Intn(10) == 0 {
		desc = creditPool[g.rand.Intn(len(creditPool))]
		amount = amount.Neg()
	}
	if inst.DebitNegative {
		amount = amount.Neg()
	}

	var lastFour, cardName string
	if len(g.cfg.Cards) > 0 {
		card := g.cfg.Cards[g.rand.Intn(len(g.cfg.Cards))]
		lastFour, cardName = card.LastFour, card.Name
	}

	return mockRow{
		date:     date.Format(inst.DateLayouts[0]),
		desc:     desc,
		amount:   amount.StringFixed(0),
		lastFour: lastFour,
		cardName: cardName,
	}
}

func (g *Generator) writeCSV(path string, inst config.Institution) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Encode the way the real bank exports, so generated files go back
	// through the matching adapter unchanged.
	var w io.Writer = f
	if inst.Encoding == "big5" {
		tw := transform.NewWriter(f, traditionalchinese.Big5.NewEncoder())
		defer tw.Close()
		w = tw
	}

	// Real exports carry preamble noise before the table; reproduce it
	// when the descriptor anchors the header by keyword.
	if inst.HeaderKeyword != "" {
		fmt.Fprintln(w, "Statement Summary")
		fmt.Fprintln(w, "Generated for demonstration only")
	}

	cw := csv.NewWriter(w)
	cw.Comma = inst.DelimiterRune()
	defer cw.Flush()

	header := []string{
		inst.Columns.Date, inst.Columns.Description, inst.Columns.Amount,
	}
	if inst.Columns.CardLastFour != "" {
		header = append(header, inst.Columns.CardLastFour)
	}
	if inst.Columns.CardName != "" {
		header = append(header, inst.Columns.CardName)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < g.opts.Rows; i++ {
		r := g.row(inst)
		rec := []string{r.date, r.desc, r.amount}
		if inst.Columns.CardLastFour != "" {
			rec = append(rec, r.lastFour)
		}
		if inst.Columns.CardName != "" {
			rec = append(rec, r.cardName)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Error()
}

func (g *Generator) writeXML(path string, inst config.Institution) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("statement")

	for i := 0; i < g.opts.Rows; i++ {
		r := g.row(inst)
		el := root.CreateElement("transaction")
		el.CreateElement(inst.Columns.Date).SetText(r.date)
		el.CreateElement(inst.Columns.Description).SetText(r.desc)
		el.CreateElement(inst.Columns.Amount).SetText(r.amount)
		if inst.Columns.CardLastFour != "" {
			el.CreateElement(inst.Columns.CardLastFour).SetText(r.lastFour)
		}
		if inst.Columns.CardName != "" {
			el.CreateElement(inst.Columns.CardName).SetText(r.cardName)
		}
	}

	doc.Indent(2)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := doc.WriteTo(f); err != nil {
		return err
	}
	return nil
}
