// Package auditlog records skipped rows so no run ever ends as a silent
// partial result. Each entry keeps the original row text for audit.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	File      string
	Line      int
	Cause     string // unsupported-institution, parse-error, unknown-account
	Raw       string
}

// Header is the CSV header for the audit log.
const Header = "timestamp,file,line,cause,raw"

const (
	numFields    = 5
	colTimestamp = 0
	colFile      = 1
	colLine      = 2
	colCause     = 3
	colRaw       = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colFile] = e.File
	row[colLine] = strconv.Itoa(e.Line)
	row[colCause] = e.Cause
	row[colRaw] = e.Raw
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	line, err := strconv.Atoi(record[colLine])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing line %q: %w", record[colLine], err)
	}
	return Entry{
		Timestamp: ts,
		File:      record[colFile],
		Line:      line,
		Cause:     record[colCause],
		Raw:       record[colRaw],
	}, nil
}

// ReadEntries reads all entries from an audit log reader.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Log appends entries to an audit CSV file, writing the header when the
// file is new. It implements the pipeline's audit sink.
type Log struct {
	path string
	now  func() time.Time
}

// Open creates a Log for path.
func Open(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Record appends one entry.
func (l *Log) Record(file string, line int, cause, raw string) error {
	isNew := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		isNew = true
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(MarshalEntry(Entry{
		Timestamp: l.now(),
		File:      file,
		Line:      line,
		Cause:     cause,
		Raw:       raw,
	})); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
