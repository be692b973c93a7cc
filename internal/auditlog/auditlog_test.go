package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
}

func TestLog_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	l := Open(path)
	l.now = fixedNow

	require.NoError(t, l.Record("esun_202601.csv", 6, "parse-error", "01/XX,壞掉的列,-10,4321,ESUN-PI"))
	require.NoError(t, l.Record("cube_202602.csv", 0, "unknown-account", "2026/02/01,SHOP A,100,9999,CUBE-A"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, 1, strings.Count(string(data), Header))
}

func TestLog_AppendsAcrossOpens(t *testing.T) {
	// A second run against the same path must append, not truncate.
	path := filepath.Join(t.TempDir(), "audit.csv")

	l := Open(path)
	l.now = fixedNow
	require.NoError(t, l.Record("a.csv", 1, "parse-error", "raw-1"))

	l2 := Open(path)
	l2.now = fixedNow
	require.NoError(t, l2.Record("b.csv", 2, "unsupported-institution", "raw-2"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	entries, err := ReadEntries(f)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.csv", entries[0].File)
	assert.Equal(t, "b.csv", entries[1].File)
	assert.Equal(t, "unsupported-institution", entries[1].Cause)
}

func TestReadEntries_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	l := Open(path)
	l.now = fixedNow

	raw := `field "with quotes", and commas`
	require.NoError(t, l.Record("weird.csv", 9, "parse-error", raw))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	entries, err := ReadEntries(f)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fixedNow(), entries[0].Timestamp.UTC())
	assert.Equal(t, 9, entries[0].Line)
	assert.Equal(t, raw, entries[0].Raw)
}

func TestUnmarshalEntry_BadRow(t *testing.T) {
	_, err := UnmarshalEntry([]string{"too", "few"})
	require.Error(t, err)

	_, err = UnmarshalEntry([]string{"not-a-time", "f", "1", "c", "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")

	_, err = UnmarshalEntry([]string{fixedNow().Format(time.RFC3339), "f", "x", "c", "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing line")
}
