package bank

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"github.com/cardstream-dev/cardstream/internal/config"
	"github.com/cardstream-dev/cardstream/internal/model"
)

// headerScanLimit bounds how far into a noisy export the header row is
// searched for.
const headerScanLimit = 50

// CSVAdapter parses delimited text exports. It is fully config-driven:
// delimiter, encoding, header location, column names, date layouts and
// sign convention all come from the institution descriptor.
type CSVAdapter struct {
	id   string
	inst config.Institution
}

// Institution returns the adapter's institution id.
func (a *CSVAdapter) Institution() string { return a.id }

// Parse reads a whole CSV export into BankRecords.
func (a *CSVAdapter) Parse(r io.Reader, period Period) (*ParseResult, error) {
	decoded, err := decodeReader(r, a.inst.Encoding)
	if err != nil {
		return nil, err
	}

	lines, err := readLines(decoded)
	if err != nil {
		return nil, fmt.Errorf("reading %s export: %w", a.id, err)
	}

	start, err := a.locateHeader(lines)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	cr.Comma = a.inst.DelimiterRune()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", a.id, err)
	}
	if len(records) <= 1 {
		return &ParseResult{}, nil
	}

	cols, err := a.columnIndexes(records[0])
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for i, rec := range records[1:] {
		line := start + i + 2
		br, perr := a.parseRow(rec, cols, period, line)
		if perr != nil {
			result.Skipped = append(result.Skipped, perr)
			continue
		}
		result.Records = append(result.Records, br)
	}
	return result, nil
}

type columnIndexes struct {
	date, desc, amount, lastFour, cardName int
}

// locateHeader finds the header row. Some exports prepend preamble lines
// (account summary, disclaimers) before the table; the configured keyword
// anchors the real header within the first 50 lines.
func (a *CSVAdapter) locateHeader(lines []string) (int, error) {
	if a.inst.HeaderKeyword == "" {
		return 0, nil
	}
	for i, line := range lines {
		if i >= headerScanLimit {
			break
		}
		if strings.Contains(line, a.inst.HeaderKeyword) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: header keyword %q not found in first %d lines", a.id, a.inst.HeaderKeyword, headerScanLimit)
}

func (a *CSVAdapter) columnIndexes(header []string) (columnIndexes, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[strings.TrimSpace(name)] = i
	}

	find := func(name string, required bool) (int, error) {
		if name == "" {
			return -1, nil
		}
		i, ok := byName[name]
		if !ok {
			if required {
				return -1, fmt.Errorf("%s: column %q not found in header", a.id, name)
			}
			return -1, nil
		}
		return i, nil
	}

	var cols columnIndexes
	var err error
	if cols.date, err = find(a.inst.Columns.Date, true); err != nil {
		return cols, err
	}
	if cols.desc, err = find(a.inst.Columns.Description, true); err != nil {
		return cols, err
	}
	if cols.amount, err = find(a.inst.Columns.Amount, true); err != nil {
		return cols, err
	}
	if cols.lastFour, err = find(a.inst.Columns.CardLastFour, false); err != nil {
		return cols, err
	}
	if cols.cardName, err = find(a.inst.Columns.CardName, false); err != nil {
		return cols, err
	}
	return cols, nil
}

func (a *CSVAdapter) parseRow(rec []string, cols columnIndexes, period Period, line int) (model.BankRecord, *RowParseError) {
	raw := strings.Join(rec, ",")
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := parseDate(a.inst, period, field(cols.date))
	if err != nil {
		return model.BankRecord{}, &RowParseError{Institution: a.id, Line: line, Field: "date", Raw: raw, Err: err}
	}

	amount, err := parseAmount(a.inst, field(cols.amount))
	if err != nil {
		return model.BankRecord{}, &RowParseError{Institution: a.id, Line: line, Field: "amount", Raw: raw, Err: err}
	}

	return model.BankRecord{
		Date:         date,
		Description:  field(cols.desc),
		Amount:       amount,
		CardLastFour: field(cols.lastFour),
		CardName:     field(cols.cardName),
		Institution:  a.id,
		Raw:          raw,
	}, nil
}

// decodeReader wraps r with the declared statement encoding. Legacy
// Taiwanese exports ship as Big5.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch encoding {
	case "", "utf-8":
		return r, nil
	case "big5":
		return transform.NewReader(r, traditionalchinese.Big5.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
