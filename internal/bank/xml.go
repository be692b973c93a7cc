package bank

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/model"
)

// XMLAdapter parses institutions whose export is a markup document
// rather than delimited text. Element names come from the same column
// map the CSV adapter uses for headers.
type XMLAdapter struct {
	id   string
	inst config.Institution
}

// Institution returns the adapter's institution id.
func (a *XMLAdapter) Institution() string { return a.id }

// Parse reads a <statement> document of <transaction> elements.
func (a *XMLAdapter) Parse(r io.Reader, period Period) (*ParseResult, error) {
	decoded, err := decodeReader(r, a.inst.Encoding)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(decoded); err != nil {
		return nil, fmt.Errorf("reading %s XML: %w", a.id, err)
	}

	root := doc.Root()
	if root == nil {
		return &ParseResult{}, nil
	}

	result := &ParseResult{}
	for i, el := range root.SelectElements("transaction") {
		line := i + 1
		br, perr := a.parseElement(el, period, line)
		if perr != nil {
			result.Skipped = append(result.Skipped, perr)
			continue
		}
		result.Records = append(result.Records, br)
	}
	return result, nil
}

func (a *XMLAdapter) parseElement(el *etree.Element, period Period, line int) (model.BankRecord, *RowParseError) {
	text := func(tag string) string {
		if tag == "" {
			return ""
		}
		child := el.SelectElement(tag)
		if child == nil {
			return ""
		}
		return strings.TrimSpace(child.Text())
	}
	raw := rawElement(el)

	date, err := parseDate(a.inst, period, text(a.inst.Columns.Date))
	if err != nil {
		return model.BankRecord{}, &RowParseError{Institution: a.id, Line: line, Field: "date", Raw: raw, Err: err}
	}

	amount, err := parseAmount(a.inst, text(a.inst.Columns.Amount))
	if err != nil {
		return model.BankRecord{}, &RowParseError{Institution: a.id, Line: line, Field: "amount", Raw: raw, Err: err}
	}

	return model.BankRecord{
		Date:         date,
		Description:  text(a.inst.Columns.Description),
		Amount:       amount,
		CardLastFour: text(a.inst.Columns.CardLastFour),
		CardName:     text(a.inst.Columns.CardName),
		Institution:  a.id,
		Raw:          raw,
	}, nil
}

// rawElement flattens a transaction element to one audit line.
func rawElement(el *etree.Element) string {
	var parts []string
	for _, child := range el.ChildElements() {
		parts = append(parts, child.Tag+"="+strings.TrimSpace(child.Text()))
	}
	return strings.Join(parts, ",")
}
