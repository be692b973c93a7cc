package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardstream-dev/cardstream/internal/model"
)

// Header is the canonical CSV header. Schema evolution is additive-only:
// new columns append to the end so prior consumers keep working.
const Header = "transaction_id,date,account_key,description,merchant,category,channel,amount,type,institution"

const (
	numFields      = 10
	dateFormat     = "2006-01-02"
	colID          = 0
	colDate        = 1
	colAccount     = 2
	colDescription = 3
	colMerchant    = 4
	colCategory    = 5
	colChannel     = 6
	colAmount      = 7
	colType        = 8
	colInstitution = 9
)

// ReadTransactions reads a canonical CSV.
func ReadTransactions(r io.Reader) ([]model.CanonicalTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading canonical CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.CanonicalTransaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes a canonical CSV (including header).
func WriteTransactions(w io.Writer, txns []model.CanonicalTransaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV row.
func MarshalTransaction(t model.CanonicalTransaction) []string {
	row := make([]string, numFields)
	row[colID] = t.ID
	row[colDate] = t.Date.Format(dateFormat)
	row[colAccount] = t.AccountKey
	row[colDescription] = t.RawDescription
	row[colMerchant] = t.Merchant
	row[colCategory] = t.Category
	row[colChannel] = t.Channel
	row[colAmount] = t.Amount.StringFixed(2)
	row[colType] = string(t.Type)
	row[colInstitution] = t.Institution
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction.
func UnmarshalTransaction(record []string) (model.CanonicalTransaction, error) {
	if len(record) != numFields {
		return model.CanonicalTransaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.CanonicalTransaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.CanonicalTransaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.CanonicalTransaction{
		ID:             record[colID],
		Date:           date,
		AccountKey:     record[colAccount],
		RawDescription: record[colDescription],
		Merchant:       record[colMerchant],
		Category:       record[colCategory],
		Channel:        record[colChannel],
		Amount:         amount,
		Type:           model.TransactionType(record[colType]),
		Institution:    record[colInstitution],
	}, nil
}

// CSVStore persists the canonical sequence as one flat file. It rewrites
// the whole file each save: identical runs produce byte-identical output.
type CSVStore struct {
	Path string
}

// Save implements Store.
func (s *CSVStore) Save(_ context.Context, txns []model.CanonicalTransaction) (int, error) {
	f, err := os.Create(s.Path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", s.Path, err)
	}
	defer f.Close()

	if err := WriteTransactions(f, txns); err != nil {
		return 0, err
	}
	return len(txns), nil
}

// LoadFile reads a canonical CSV from disk.
func LoadFile(path string) ([]model.CanonicalTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadTransactions(f)
}
